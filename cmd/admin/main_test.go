package main

import "testing"

func TestSuggest(t *testing.T) {
	if got := suggest("snapshot", dbQueries); got != ` (did you mean "snapshots"?)` {
		t.Fatalf("suggest=%q", got)
	}
	if got := suggest("zzzzzzzz", commands); got != "" {
		t.Fatalf("suggest=%q want none", got)
	}
}

func TestEach_KeepsOrder(t *testing.T) {
	out, err := each([]int{3, 1, 2}, nil)
	if err != nil || len(out) != 3 || out[0] != 3 || out[2] != 2 {
		t.Fatalf("out=%v err=%v", out, err)
	}
}
