// Copyright 2026 The Pagegate Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import (
	"testing"
	"time"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func TestFakeAdvance(t *testing.T) {
	fake := Fake(epoch)
	if !fake.Now().Equal(epoch) {
		t.Fatal("fake clock should start at its initial time")
	}
	fake.Advance(5 * time.Second)
	if got := fake.Now().Sub(epoch); got != 5*time.Second {
		t.Errorf("elapsed = %v, want 5s", got)
	}
}

func TestFakeAutoAdvance(t *testing.T) {
	fake := Fake(epoch)
	fake.AutoAdvance(10 * time.Millisecond)

	start := fake.Now()
	end := fake.Now()
	if got := end.Sub(start); got != 10*time.Millisecond {
		t.Errorf("elapsed = %v, want 10ms", got)
	}
}

func TestReal(t *testing.T) {
	before := time.Now()
	now := Real().Now()
	if now.Before(before) {
		t.Errorf("Real().Now() = %v is before %v", now, before)
	}
}
