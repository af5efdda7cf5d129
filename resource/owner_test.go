package resource

import (
	"context"
	"errors"
	"testing"

	ferrors "github.com/wippyai/wasm-functions/errors"
)

type fakeHost struct {
	next    Handle
	drops   map[Handle]int
	buildFn func(parents []Handle) (Handle, error)
}

func newFakeHost() *fakeHost {
	return &fakeHost{drops: make(map[Handle]int)}
}

func (h *fakeHost) build(_ context.Context, parents []Handle) (Handle, error) {
	if h.buildFn != nil {
		return h.buildFn(parents)
	}
	h.next++
	return h.next, nil
}

func (h *fakeHost) drop(_ context.Context, handle Handle) error {
	h.drops[handle]++
	return nil
}

func TestOwner_Lifecycle(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	o, err := Construct(ctx, TypeRedisClient, host.build, host.drop)
	if err != nil {
		t.Fatalf("Construct: %v", err)
	}
	if o.State() != StateConstructed {
		t.Fatalf("State = %v, want constructed", o.State())
	}

	h, err := o.Handle()
	if err != nil || h == 0 {
		t.Fatalf("Handle = %d, %v", h, err)
	}

	if err := o.Release(ctx); err != nil {
		t.Fatalf("Release: %v", err)
	}
	if o.State() != StateReleased {
		t.Fatalf("State = %v, want released", o.State())
	}
	if _, err := o.Handle(); !errors.Is(err, ErrReleased) {
		t.Errorf("Handle after release = %v, want ErrReleased", err)
	}
}

func TestOwner_ReleaseExactlyOnce(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	o, err := Construct(ctx, TypeS3Client, host.build, host.drop)
	if err != nil {
		t.Fatal(err)
	}
	h, _ := o.Handle()

	for i := 0; i < 3; i++ {
		if err := o.Release(ctx); err != nil {
			t.Fatalf("Release #%d: %v", i, err)
		}
	}
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if host.drops[h] != 1 {
		t.Errorf("host saw %d drops, want 1", host.drops[h])
	}
}

func TestOwner_ReleasedOnErrorPath(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()
	var handle Handle

	failing := func() (err error) {
		o, err := Construct(ctx, TypeRedisClient, host.build, host.drop)
		if err != nil {
			return err
		}
		defer o.Close()
		handle, _ = o.Handle()
		return errors.New("handler failed")
	}

	if err := failing(); err == nil {
		t.Fatal("expected failure")
	}
	if host.drops[handle] != 1 {
		t.Errorf("host saw %d drops, want 1", host.drops[handle])
	}
}

// parent released while a derived client is alive must be refused
func TestOwner_ParentOutlivesChild(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	creds, err := Construct(ctx, TypeCredentialsProvider, host.build, host.drop)
	if err != nil {
		t.Fatal(err)
	}
	client, err := Construct(ctx, TypeDDBClient, host.build, host.drop, creds)
	if err != nil {
		t.Fatal(err)
	}

	err = creds.Release(ctx)
	if !errors.Is(err, ErrOutstandingBorrow) {
		t.Fatalf("releasing borrowed parent = %v, want ErrOutstandingBorrow", err)
	}
	if ferrors.KindOf(err) != ferrors.KindFailedPrecondition {
		t.Errorf("kind = %v, want failed_precondition", ferrors.KindOf(err))
	}
	if creds.State() != StateConstructed {
		t.Fatalf("parent state = %v after refused release", creds.State())
	}
	credsHandle, _ := creds.Handle()
	if host.drops[credsHandle] != 0 {
		t.Error("host was told to drop a borrowed parent")
	}

	if _, err := client.Handle(); err != nil {
		t.Errorf("child unusable after refused parent release: %v", err)
	}

	if err := client.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if creds.Borrows() != 0 {
		t.Errorf("parent borrows = %d after child release", creds.Borrows())
	}
	if err := creds.Release(ctx); err != nil {
		t.Fatalf("parent release after child: %v", err)
	}
}

func TestOwner_ConstructFromReleasedParent(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	creds, _ := Construct(ctx, TypeCredentialsProvider, host.build, host.drop)
	_ = creds.Release(ctx)

	built := false
	host.buildFn = func([]Handle) (Handle, error) {
		built = true
		return 99, nil
	}

	_, err := Construct(ctx, TypeS3Client, host.build, host.drop, creds)
	if !errors.Is(err, ErrReleased) {
		t.Fatalf("Construct from released parent = %v, want ErrReleased", err)
	}
	if built {
		t.Error("host construction issued for released parent")
	}
}

func TestOwner_ConstructFailureReturnsBorrows(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	creds, _ := Construct(ctx, TypeCredentialsProvider, host.build, host.drop)
	host.buildFn = func([]Handle) (Handle, error) {
		return 0, ferrors.New(ferrors.PhaseHost, ferrors.KindUnauthorized).Build()
	}

	_, err := Construct(ctx, TypeDDBClient, host.build, host.drop, creds)
	if ferrors.KindOf(err) != ferrors.KindUnauthorized {
		t.Fatalf("err = %v, want unauthorized", err)
	}
	if creds.Borrows() != 0 {
		t.Errorf("borrows = %d after failed construction", creds.Borrows())
	}
	if err := creds.Release(ctx); err != nil {
		t.Errorf("Release: %v", err)
	}
}

func TestOwner_ZeroHandleRejected(t *testing.T) {
	host := newFakeHost()
	host.buildFn = func([]Handle) (Handle, error) { return 0, nil }

	_, err := Construct(context.Background(), TypeRedisClient, host.build, host.drop)
	if ferrors.KindOf(err) != ferrors.KindInternal {
		t.Errorf("err = %v, want internal", err)
	}
}

func TestOwner_Borrow(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()

	creds, _ := Construct(ctx, TypeCredentialsProvider, host.build, host.drop)
	h, done, err := creds.Borrow()
	if err != nil || h == 0 {
		t.Fatalf("Borrow = %d, %v", h, err)
	}
	if !errors.Is(creds.Release(ctx), ErrOutstandingBorrow) {
		t.Error("release during borrow should fail")
	}
	done()
	done()
	if creds.Borrows() != 0 {
		t.Errorf("borrows = %d, want 0", creds.Borrows())
	}
	if err := creds.Release(ctx); err != nil {
		t.Fatal(err)
	}
	if _, _, err := creds.Borrow(); !errors.Is(err, ErrReleased) {
		t.Errorf("Borrow after release = %v", err)
	}
}

func TestAdopt(t *testing.T) {
	host := newFakeHost()
	client, _ := Construct(context.Background(), TypeRedisClient, host.build, host.drop)

	stream, err := Adopt(TypeResponseStream, 42, host.drop, client)
	if err != nil {
		t.Fatal(err)
	}
	if h, _ := stream.Handle(); h != 42 {
		t.Errorf("handle = %d", h)
	}
	if client.Borrows() != 1 {
		t.Errorf("client borrows = %d", client.Borrows())
	}
}

func TestScope_ReleasesInReverse(t *testing.T) {
	ctx := context.Background()
	host := newFakeHost()
	var order []Handle
	drop := func(_ context.Context, h Handle) error {
		order = append(order, h)
		return nil
	}

	var s Scope
	creds, _ := Construct(ctx, TypeCredentialsProvider, host.build, drop)
	s.Add(creds)
	client, _ := Construct(ctx, TypeDDBClient, host.build, drop, creds)
	s.Add(client)

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("release order = %v, want [2 1]", order)
	}
	if creds.State() != StateReleased || client.State() != StateReleased {
		t.Error("scope left owners alive")
	}
}
