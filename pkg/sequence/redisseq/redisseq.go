// Package redisseq reads Redis lists and streams as lazy sequences and
// writes sequences back to lists.
//
// Sources fetch one page per round trip and only when the previous page has
// been consumed, so a pipeline that stops early never reads the rest of the
// key. Redis failures are returned from Next as *errors.OperationError and
// the failed round trip is retried by the next pull.
package redisseq

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	gferrors "github.com/vnykmshr/genflow/pkg/common/errors"
	"github.com/vnykmshr/genflow/pkg/common/validation"
	"github.com/vnykmshr/genflow/pkg/sequence/seq"
)

const module = "redisseq"

const (
	// DefaultPageSize is the number of entries fetched or written per round trip.
	DefaultPageSize = 100

	// DefaultTimeout bounds a single round trip.
	DefaultTimeout = 5 * time.Second
)

type config struct {
	pageSize int
	timeout  time.Duration
}

// Option configures a Redis sequence or sink.
type Option func(*config)

// WithPageSize sets the number of entries per round trip.
func WithPageSize(n int) Option {
	return func(c *config) {
		c.pageSize = n
	}
}

// WithTimeout bounds every round trip; zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

func buildConfig(client redis.Cmdable, key string, opts []Option) (config, error) {
	c := config{pageSize: DefaultPageSize, timeout: DefaultTimeout}
	for _, opt := range opts {
		opt(&c)
	}

	if err := validation.Present(module, "client", client); err != nil {
		return c, err
	}
	if err := validation.NotBlank(module, "key", key); err != nil {
		return c, err
	}
	if err := validation.Positive(module, "pageSize", c.pageSize); err != nil {
		return c, err
	}
	if err := validation.NonNegative(module, "timeout", c.timeout); err != nil {
		return c, err
	}
	return c, nil
}

func (c config) roundTrip(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout == 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.timeout)
}

func operationError(op, key string, err error) error {
	return gferrors.NewOperationError(module, op, fmt.Errorf("%w: %w", gferrors.ErrSourceFailed, err)).
		WithContext("key=" + key)
}

// listSource pages through a list with LRANGE.
type listSource struct {
	client redis.Cmdable
	key    string
	config config
	offset int64
	page   []string
	pos    int
}

func (l *listSource) Next(ctx context.Context) (string, bool, error) {
	if l.pos < len(l.page) {
		v := l.page[l.pos]
		l.pos++
		return v, true, nil
	}

	rctx, cancel := l.config.roundTrip(ctx)
	defer cancel()

	page, err := l.client.LRange(rctx, l.key, l.offset, l.offset+int64(l.config.pageSize)-1).Result()
	if err != nil {
		return "", false, operationError("LRANGE", l.key, err)
	}
	if len(page) == 0 {
		return "", false, nil
	}

	l.offset += int64(len(page))
	l.page, l.pos = page, 1
	return page[0], true, nil
}

// NewList returns the elements of the list at key from head to tail without
// removing them. Elements pushed to the tail while the sequence is read are
// included; elements removed from the head shift the remaining ones.
func NewList(client redis.Cmdable, key string, opts ...Option) (*seq.Sequence[string], error) {
	c, err := buildConfig(client, key, opts)
	if err != nil {
		return nil, err
	}
	return seq.New[string](&listSource{client: client, key: key, config: c}), nil
}

// popSource drains a list with LPOP.
type popSource struct {
	client redis.Cmdable
	key    string
	config config
	page   []string
	pos    int
}

func (p *popSource) Next(ctx context.Context) (string, bool, error) {
	if p.pos < len(p.page) {
		v := p.page[p.pos]
		p.pos++
		return v, true, nil
	}

	rctx, cancel := p.config.roundTrip(ctx)
	defer cancel()

	var page []string
	var err error
	if p.config.pageSize == 1 {
		var v string
		v, err = p.client.LPop(rctx, p.key).Result()
		page = []string{v}
	} else {
		page, err = p.client.LPopCount(rctx, p.key, p.config.pageSize).Result()
	}
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, operationError("LPOP", p.key, err)
	}
	if len(page) == 0 {
		return "", false, nil
	}

	p.page, p.pos = page, 1
	return page[0], true, nil
}

// NewPop removes and returns elements from the head of the list at key until
// it is empty. Up to the page size of elements are popped per round trip, so
// elements popped but never pulled are lost when a pipeline stops early; use
// WithPageSize(1) to pop exactly what is consumed.
func NewPop(client redis.Cmdable, key string, opts ...Option) (*seq.Sequence[string], error) {
	c, err := buildConfig(client, key, opts)
	if err != nil {
		return nil, err
	}
	return seq.New[string](&popSource{client: client, key: key, config: c}), nil
}

// streamSource pages through a stream with XRANGE.
type streamSource struct {
	client redis.Cmdable
	stream string
	config config
	start  string
	page   []redis.XMessage
	pos    int
}

func (s *streamSource) Next(ctx context.Context) (redis.XMessage, bool, error) {
	if s.pos < len(s.page) {
		v := s.page[s.pos]
		s.pos++
		return v, true, nil
	}
	if s.start == "" {
		// The last entry had the largest possible ID.
		return redis.XMessage{}, false, nil
	}

	rctx, cancel := s.config.roundTrip(ctx)
	defer cancel()

	page, err := s.client.XRangeN(rctx, s.stream, s.start, "+", int64(s.config.pageSize)).Result()
	if err != nil {
		return redis.XMessage{}, false, operationError("XRANGE", s.stream, err)
	}
	if len(page) == 0 {
		return redis.XMessage{}, false, nil
	}

	s.start = nextStreamID(page[len(page)-1].ID)
	s.page, s.pos = page, 1
	return page[0], true, nil
}

// nextStreamID returns the smallest stream ID greater than id, or "" if id
// is the largest possible ID.
func nextStreamID(id string) string {
	msPart, seqPart, ok := strings.Cut(id, "-")
	if !ok {
		return id + "-1"
	}
	ms, err1 := strconv.ParseUint(msPart, 10, 64)
	sq, err2 := strconv.ParseUint(seqPart, 10, 64)
	if err1 != nil || err2 != nil {
		return ""
	}
	if sq < ^uint64(0) {
		return msPart + "-" + strconv.FormatUint(sq+1, 10)
	}
	if ms < ^uint64(0) {
		return strconv.FormatUint(ms+1, 10) + "-0"
	}
	return ""
}

// NewStream returns the entries of stream in ID order. Entries appended
// while the sequence is read are included.
func NewStream(client redis.Cmdable, stream string, opts ...Option) (*seq.Sequence[redis.XMessage], error) {
	c, err := buildConfig(client, stream, opts)
	if err != nil {
		return nil, err
	}
	return seq.New[redis.XMessage](&streamSource{client: client, stream: stream, config: c, start: "-"}), nil
}

// WriteList drains source and appends every value to the tail of the list
// at key, pipelining up to the page size of RPUSH commands per round trip.
// It returns the number of values written. When a pull or a round trip
// fails, the values of earlier round trips stay written.
func WriteList[T any](ctx context.Context, client redis.Cmdable, key string, source seq.Source[T], opts ...Option) (int64, error) {
	c, err := buildConfig(client, key, opts)
	if err != nil {
		return 0, err
	}
	if err := validation.Present(module, "source", source); err != nil {
		return 0, err
	}

	var written int64
	pipe := client.Pipeline()
	flush := func() error {
		n := pipe.Len()
		if n == 0 {
			return nil
		}
		rctx, cancel := c.roundTrip(ctx)
		defer cancel()
		if _, err := pipe.Exec(rctx); err != nil {
			return operationError("RPUSH", key, err)
		}
		written += int64(n)
		return nil
	}

	in := seq.New(source)
	for {
		v, ok, err := in.Next(ctx)
		if err != nil {
			pipe.Discard()
			return written, err
		}
		if !ok {
			break
		}
		pipe.RPush(ctx, key, v)
		if pipe.Len() >= c.pageSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	return written, flush()
}
