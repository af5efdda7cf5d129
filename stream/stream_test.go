package stream

import (
	"context"
	"errors"
	"testing"
)

type source struct {
	values []int
	calls  int
}

func (s *source) fetch(context.Context) (int, bool, error) {
	s.calls++
	if len(s.values) == 0 {
		return 0, false, nil
	}
	v := s.values[0]
	s.values = s.values[1:]
	return v, true, nil
}

func TestStream_NPulls(t *testing.T) {
	ctx := context.Background()

	for _, n := range []int{0, 1, 5} {
		src := &source{}
		for i := 0; i < n; i++ {
			src.values = append(src.values, i)
		}
		s := New(src.fetch)

		got := 0
		for {
			v, ok, err := s.Next(ctx)
			if err != nil {
				t.Fatal(err)
			}
			if !ok {
				break
			}
			if v != got {
				t.Errorf("element %d = %d", got, v)
			}
			got++
		}

		if got != n {
			t.Errorf("n=%d: got %d elements", n, got)
		}
		if src.calls != n+1 {
			t.Errorf("n=%d: host calls = %d, want %d", n, src.calls, n+1)
		}
	}
}

func TestStream_IdempotentAfterEnd(t *testing.T) {
	ctx := context.Background()
	src := &source{values: []int{1}}
	s := New(src.fetch)

	s.Next(ctx)
	s.Next(ctx)
	calls := src.calls

	for i := 0; i < 5; i++ {
		if _, ok, err := s.Next(ctx); ok || err != nil {
			t.Fatalf("pull %d after end = ok:%v err:%v", i, ok, err)
		}
	}
	if src.calls != calls {
		t.Errorf("host called %d more times after end", src.calls-calls)
	}
	if !s.Done() {
		t.Error("Done = false after end")
	}
}

func TestStream_NoReadAhead(t *testing.T) {
	ctx := context.Background()
	src := &source{values: []int{1, 2, 3}}
	s := New(src.fetch)

	if src.calls != 0 {
		t.Fatal("fetch issued before first pull")
	}
	s.Next(ctx)
	if src.calls != 1 {
		t.Errorf("calls after one pull = %d", src.calls)
	}
	if s.Pulls() != 1 {
		t.Errorf("Pulls = %d", s.Pulls())
	}
}

func TestStream_ErrorDoesNotEnd(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("boom")
	fail := true
	s := New(func(context.Context) (string, bool, error) {
		if fail {
			fail = false
			return "", false, boom
		}
		return "ok", true, nil
	})

	if _, _, err := s.Next(ctx); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}
	if s.Done() {
		t.Fatal("error ended the stream")
	}
	if v, ok, err := s.Next(ctx); !ok || err != nil || v != "ok" {
		t.Errorf("after error: %q %v %v", v, ok, err)
	}
}

func TestStream_OnDoneOnce(t *testing.T) {
	ctx := context.Background()
	n := 0
	s := FromSlice([]int{1}).OnDone(func() { n++ })

	s.Next(ctx)
	if n != 0 {
		t.Fatal("OnDone ran before end")
	}
	s.Next(ctx)
	s.Next(ctx)
	s.Stop()
	if n != 1 {
		t.Errorf("OnDone ran %d times", n)
	}
}

func TestStream_Stop(t *testing.T) {
	ctx := context.Background()
	src := &source{values: []int{1, 2, 3}}
	s := New(src.fetch)

	s.Next(ctx)
	s.Stop()
	if _, ok, _ := s.Next(ctx); ok {
		t.Error("pull after Stop returned an element")
	}
	if src.calls != 1 {
		t.Errorf("calls = %d", src.calls)
	}
}

func TestStream_All(t *testing.T) {
	ctx := context.Background()
	s := FromSlice([]string{"a", "b", "c"})

	var got []string
	for v, err := range s.All(ctx) {
		if err != nil {
			t.Fatal(err)
		}
		got = append(got, v)
		if v == "b" {
			break
		}
	}
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}

	// not restartable: iteration resumes after "b"
	rest, err := s.Collect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rest) != 1 || rest[0] != "c" {
		t.Errorf("rest = %v", rest)
	}
}

// nested streams advance independently of the stream that produced them
func TestStream_Nested(t *testing.T) {
	ctx := context.Background()

	innerSrc := &source{values: []int{10, 20}}
	type elem struct {
		scalar int
		nested *Stream[int]
	}
	outerSrc := []elem{
		{scalar: 1},
		{nested: New(innerSrc.fetch)},
	}
	outerCalls := 0
	i := 0
	outer := New(func(context.Context) (elem, bool, error) {
		outerCalls++
		if i >= len(outerSrc) {
			return elem{}, false, nil
		}
		e := outerSrc[i]
		i++
		return e, true, nil
	})

	var nested *Stream[int]
	for {
		e, ok, err := outer.Next(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			break
		}
		if e.nested != nil {
			nested = e.nested
		}
	}
	if outerCalls != 3 {
		t.Errorf("outer calls = %d, want 3", outerCalls)
	}
	if innerSrc.calls != 0 {
		t.Errorf("outer traversal pulled nested stream %d times", innerSrc.calls)
	}

	vals, err := nested.Collect(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(vals) != 2 || innerSrc.calls != 3 {
		t.Errorf("nested vals = %v, calls = %d", vals, innerSrc.calls)
	}
}
