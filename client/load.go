/*
 *  Copyright (c) 2024-2025 Mikhail Knyazhev <markus621@yandex.ru>. All rights reserved.
 *  Use of this source code is governed by a BSD 3-Clause license that can be found in the LICENSE file.
 */

package client

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"

	"go.osspkg.com/syncing"
)

type (
	// Task is one weighted request kind of a load plan.
	Task struct {
		Name   string
		Weight int
		// Call performs the request on an open session.
		Call func(s *Session, rnd *rand.Rand) error
	}

	Plan struct {
		Users      int
		Iterations int
		Tasks      []Task
		// Pause is the upper bound of a random wait between requests.
		Pause time.Duration
		// Reconnect opens a new session per request instead of one per user.
		Reconnect bool
		Seed      int64
	}

	Stat struct {
		Requests uint64
		Failures uint64
		Total    time.Duration
		Min      time.Duration
		Max      time.Duration
	}

	Report struct {
		mux   sync.Mutex
		stats map[string]*Stat
	}
)

func (s Stat) Avg() time.Duration {
	if s.Requests == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Requests)
}

func newReport() *Report {
	return &Report{stats: make(map[string]*Stat)}
}

func (r *Report) add(name string, d time.Duration, err error) {
	r.mux.Lock()
	defer r.mux.Unlock()

	st, ok := r.stats[name]
	if !ok {
		st = &Stat{Min: d, Max: d}
		r.stats[name] = st
	}
	st.Requests++
	if err != nil {
		st.Failures++
	}
	st.Total += d
	st.Min = min(st.Min, d)
	st.Max = max(st.Max, d)
}

func (r *Report) Get(name string) Stat {
	r.mux.Lock()
	defer r.mux.Unlock()

	if st, ok := r.stats[name]; ok {
		return *st
	}
	return Stat{}
}

func (r *Report) Names() []string {
	r.mux.Lock()
	defer r.mux.Unlock()

	names := make([]string, 0, len(r.stats))
	for name := range r.stats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Report) String() string {
	var sb strings.Builder
	for _, name := range r.Names() {
		st := r.Get(name)
		fmt.Fprintf(&sb, "%-16s reqs=%d fails=%d avg=%s min=%s max=%s\n",
			name, st.Requests, st.Failures, st.Avg(), st.Min, st.Max)
	}
	return sb.String()
}

func pick(tasks []Task, total int, rnd *rand.Rand) Task {
	n := rnd.Intn(total)
	for _, t := range tasks {
		if n < t.Weight {
			return t
		}
		n -= t.Weight
	}
	return tasks[len(tasks)-1]
}

// Load runs the plan against cli and returns per-task timings.
// The "connect" entry records session setup including the greeting.
func Load(ctx context.Context, cli Client, p Plan) (*Report, error) {
	total := 0
	for _, t := range p.Tasks {
		if t.Weight <= 0 || t.Call == nil {
			return nil, fmt.Errorf("invalid task %q", t.Name)
		}
		total += t.Weight
	}
	if total == 0 {
		return nil, fmt.Errorf("load plan has no tasks")
	}

	rep := newReport()
	wg := syncing.NewGroup()

	for u := 0; u < max(p.Users, 1); u++ {
		rnd := rand.New(rand.NewSource(p.Seed + int64(u)))
		wg.Background(func() {
			runUser(ctx, cli, p, total, rnd, rep)
		})
	}
	wg.Wait()

	return rep, nil
}

func runUser(ctx context.Context, cli Client, p Plan, total int, rnd *rand.Rand, rep *Report) {
	iterations := max(p.Iterations, 1)

	call := func(s *Session) {
		t := pick(p.Tasks, total, rnd)
		start := time.Now()
		err := t.Call(s, rnd)
		rep.add(t.Name, time.Since(start), err)
	}

	pause := func() bool {
		if p.Pause > 0 {
			select {
			case <-ctx.Done():
				return false
			case <-time.After(time.Duration(rnd.Int63n(int64(p.Pause)))):
			}
		}
		return ctx.Err() == nil
	}

	if p.Reconnect {
		for i := 0; i < iterations && pause(); i++ {
			start := time.Now()
			err := cli.Session(ctx, func(s *Session) error {
				rep.add("connect", time.Since(start), nil)
				call(s)
				_, err := s.Quit()
				return err
			})
			if err != nil {
				rep.add("session", time.Since(start), err)
			}
		}
		return
	}

	start := time.Now()
	err := cli.Session(ctx, func(s *Session) error {
		rep.add("connect", time.Since(start), nil)
		for i := 0; i < iterations && pause(); i++ {
			call(s)
		}
		_, err := s.Quit()
		return err
	})
	if err != nil {
		rep.add("session", time.Since(start), err)
	}
}
