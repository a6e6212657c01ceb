package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/gabrielrom/gomarketplace/internal/cart/domain"
)

const DefaultStorageKey = "@GoMarketplace:products"

var (
	ErrIO              = errors.New("cart storage io")
	ErrDeserialization = errors.New("cart deserialization")
	ErrNotHydrated     = errors.New("cart not hydrated")
)

type Option func(*Service)

func WithLogger(log *slog.Logger) Option {
	return func(s *Service) { s.log = log }
}

func WithStorageKey(key string) Option {
	return func(s *Service) { s.key = key }
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) { s.tracer = tracer }
}

// Service owns the in-memory cart and keeps the bridge in step with it.
// Mutations hold mu across compute, save and install, so overlapping calls
// run one after another.
type Service struct {
	bridge Bridge
	key    string
	log    *slog.Logger
	tracer trace.Tracer

	mu       sync.Mutex
	state    domain.State
	hydrated bool
	version  uint64

	// notifyMu orders delivery; delivered is the newest version listeners
	// have seen.
	notifyMu  sync.Mutex
	delivered uint64

	subMu   sync.Mutex
	subs    map[int]func(domain.State)
	nextSub int
}

func NewService(bridge Bridge, opts ...Option) *Service {
	s := &Service{
		bridge: bridge,
		key:    DefaultStorageKey,
		log:    slog.Default(),
		tracer: otel.Tracer("github.com/gabrielrom/gomarketplace/internal/cart/app"),
		state:  domain.State{},
		subs:   make(map[int]func(domain.State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Hydrate replaces the in-memory cart with the persisted one. A missing blob
// means an empty cart. A corrupt blob is reported, the current state is left
// untouched and mutations are refused until a later Hydrate or Reset
// succeeds. A load failure changes nothing: the stored blob was not read, so
// the last hydrate result still stands.
func (s *Service) Hydrate(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "cart.Hydrate", trace.WithAttributes(attribute.String("cart.key", s.key)))
	defer span.End()

	s.mu.Lock()
	blob, found, err := s.bridge.Load(ctx, s.key)
	if err != nil {
		s.mu.Unlock()
		err = fmt.Errorf("%w: load %q: %w", ErrIO, s.key, err)
		s.fail(span, "cart hydrate failed", err)
		return err
	}

	next := domain.State{}
	if found {
		next, err = domain.Decode(blob)
		if err != nil {
			s.hydrated = false
			s.mu.Unlock()
			err = fmt.Errorf("%w: %q: %w", ErrDeserialization, s.key, err)
			s.fail(span, "cart hydrate failed", err)
			return err
		}
	}

	s.state = next
	s.hydrated = true
	v := s.install()
	snapshot := next.Clone()
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("cart.items", len(snapshot)))
	s.log.Info("cart hydrated",
		slog.String("key", s.key),
		slog.Bool("found", found),
		slog.Int("items", len(snapshot)),
	)
	s.notify(v, snapshot)
	return nil
}

// Products returns a copy of the current cart.
func (s *Service) Products() domain.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

func (s *Service) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Count()
}

func (s *Service) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Total()
}

func (s *Service) AddToCart(ctx context.Context, p domain.Product) (domain.State, error) {
	return s.mutate(ctx, "cart.AddToCart", p.ID, func(cur domain.State) domain.State {
		return cur.Add(p)
	})
}

func (s *Service) Increment(ctx context.Context, id string) (domain.State, error) {
	return s.mutate(ctx, "cart.Increment", id, func(cur domain.State) domain.State {
		return cur.Increment(id)
	})
}

func (s *Service) Decrement(ctx context.Context, id string) (domain.State, error) {
	return s.mutate(ctx, "cart.Decrement", id, func(cur domain.State) domain.State {
		return cur.Decrement(id)
	})
}

// Reset discards whatever is stored and starts from an empty cart. It is the
// explicit recovery path after Hydrate reported a corrupt blob.
func (s *Service) Reset(ctx context.Context) error {
	ctx, span := s.tracer.Start(ctx, "cart.Reset")
	defer span.End()

	s.mu.Lock()
	if err := s.save(ctx, domain.State{}); err != nil {
		s.mu.Unlock()
		s.fail(span, "cart reset failed", err)
		return err
	}
	s.state = domain.State{}
	s.hydrated = true
	v := s.install()
	s.mu.Unlock()

	s.log.Info("cart reset", slog.String("key", s.key))
	s.notify(v, domain.State{})
	return nil
}

// Subscribe registers fn to receive the cart after installed changes.
// Deliveries are serialized and never go backwards: when changes land while
// a listener is still running, it receives the newest state and skips the
// ones in between. fn may read from the Service but must not mutate it.
// The returned func removes the subscription.
func (s *Service) Subscribe(fn func(domain.State)) func() {
	s.subMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Service) mutate(ctx context.Context, name, id string, apply func(domain.State) domain.State) (domain.State, error) {
	ctx, span := s.tracer.Start(ctx, name, trace.WithAttributes(attribute.String("cart.item_id", id)))
	defer span.End()

	s.mu.Lock()
	if !s.hydrated {
		s.mu.Unlock()
		err := fmt.Errorf("%w: %s %q", ErrNotHydrated, name, id)
		s.fail(span, "cart mutation refused", err)
		return nil, err
	}

	next := apply(s.state)
	if err := s.save(ctx, next); err != nil {
		s.mu.Unlock()
		s.fail(span, "cart mutation failed", err)
		return nil, err
	}
	s.state = next
	v := s.install()
	snapshot := next.Clone()
	s.mu.Unlock()

	span.SetAttributes(attribute.Int("cart.items", len(snapshot)))
	s.log.Debug("cart mutated",
		slog.String("op", name),
		slog.String("id", id),
		slog.Int("items", len(snapshot)),
	)
	s.notify(v, snapshot)
	return snapshot, nil
}

// save must be called with mu held.
func (s *Service) save(ctx context.Context, next domain.State) error {
	blob, err := domain.Encode(next)
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrIO, err)
	}
	if err := s.bridge.Save(ctx, s.key, blob); err != nil {
		return fmt.Errorf("%w: save %q: %w", ErrIO, s.key, err)
	}
	return nil
}

// install bumps the state version. mu must be held.
func (s *Service) install() uint64 {
	s.version++
	return s.version
}

func (s *Service) notify(v uint64, state domain.State) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()
	if v <= s.delivered {
		return
	}
	s.delivered = v

	s.subMu.Lock()
	fns := make([]func(domain.State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	for _, fn := range fns {
		fn(state.Clone())
	}
}

func (s *Service) fail(span trace.Span, msg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	s.log.Error(msg, slog.String("key", s.key), slog.Any("err", err))
}
