// Package nats publishes ledger entries and standings of a session to NATS.
package nats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/mpapenbr/yutrace/log"
	"github.com/mpapenbr/yutrace/pkg/model"
)

const (
	subjectPrefix = "yutrace"
	kvBucket      = "yutrace"
	// SeqHeader carries the ledger sequence number of a published entry
	SeqHeader = "Yutrace-Seq"
)

type (
	// MsgPublisher is satisfied by *nats.Conn
	MsgPublisher interface {
		PublishMsg(m *nats.Msg) error
	}
	// KeyValue is satisfied by jetstream.KeyValue
	KeyValue interface {
		Put(ctx context.Context, key string, value []byte) (uint64, error)
	}
	Publisher struct {
		ctx      context.Context
		conn     MsgPublisher
		kv       KeyValue
		session  string
		l        *log.Logger
		failures int
	}
	Option func(*Publisher)
)

func WithContext(ctx context.Context) Option {
	return func(p *Publisher) {
		p.ctx = ctx
	}
}

// WithKeyValue enables storing the latest standings of the session.
func WithKeyValue(kv KeyValue) Option {
	return func(p *Publisher) {
		p.kv = kv
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.l = l
	}
}

func NewPublisher(conn MsgPublisher, session string, opts ...Option) (*Publisher, error) {
	if conn == nil {
		return nil, fmt.Errorf("%w: no connection", model.ErrInvalidArgument)
	}
	if session == "" || strings.ContainsAny(session, ".*> \t\r\n") {
		return nil, fmt.Errorf("%w: session %q is not a valid subject token",
			model.ErrInvalidArgument, session)
	}
	ret := &Publisher{
		ctx:     context.Background(),
		conn:    conn,
		session: session,
		l:       log.Default().Named("nats"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret, nil
}

// Subject returns yutrace.<session>.ledger.<kind>
func (p *Publisher) Subject(kind model.EntryKind) string {
	return fmt.Sprintf("%s.%s.ledger.%s", subjectPrefix, p.session, kind)
}

func (p *Publisher) RankingKey() string {
	return p.session + ".ranking"
}

// Publish sends the entry as json payload.
func (p *Publisher) Publish(e model.Entry) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}
	msg := nats.NewMsg(p.Subject(e.Kind))
	msg.Data = data
	msg.Header.Set(SeqHeader, strconv.Itoa(e.Seq))
	return p.conn.PublishMsg(msg)
}

// Listener returns a callback for engine.WithListener. Publishing errors are
// logged and counted, they never reach the engine.
func (p *Publisher) Listener() func(model.Entry) {
	return func(e model.Entry) {
		if err := p.Publish(e); err != nil {
			p.failures++
			p.l.Warn("could not publish ledger entry",
				log.Int("seq", e.Seq),
				log.ErrorField(err))
		}
	}
}

// Failures is the number of entries the listener could not publish.
func (p *Publisher) Failures() int {
	return p.failures
}

// PublishRanking stores the standings in the key value store. Without a
// key value store this is a no-op.
func (p *Publisher) PublishRanking(ranking []model.Standing) error {
	if p.kv == nil {
		return nil
	}
	data, err := json.Marshal(ranking)
	if err != nil {
		return err
	}
	rev, err := p.kv.Put(p.ctx, p.RankingKey(), data)
	if err != nil {
		return err
	}
	p.l.Debug("ranking stored", log.String("key", p.RankingKey()), log.Uint("revision", uint(rev)))
	return nil
}

// Connect opens a NATS connection that logs connection state changes.
func Connect(url string, l *log.Logger) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.Name("yutrace"),
		nats.Timeout(5*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			l.Warn("nats disconnected", log.ErrorField(err))
		}),
		nats.ReconnectHandler(func(c *nats.Conn) {
			l.Info("nats reconnected", log.String("url", c.ConnectedUrl()))
		}),
	)
}

// SetupKV creates or binds the key value bucket holding session standings.
func SetupKV(ctx context.Context, conn *nats.Conn) (jetstream.KeyValue, error) {
	js, err := jetstream.New(conn)
	if err != nil {
		return nil, err
	}
	return js.CreateOrUpdateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      kvBucket,
		Description: "latest standings per yutrace session",
		History:     1,
	})
}
