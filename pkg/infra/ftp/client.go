package ftp

import (
	"context"
	"io"
	"time"

	"github.com/jlaffaye/ftp"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/seqpipe/pkg/domain/interfaces"
	"github.com/m-mizutani/seqpipe/pkg/domain/model"
	"github.com/m-mizutani/seqpipe/pkg/domain/types"
)

// config holds internal archive configuration
type config struct {
	addr     string
	user     string
	password string
	timeout  time.Duration
}

// Option is a functional option for the archive client
type Option func(*config)

// WithAddr sets the host:port of the FTP server
func WithAddr(addr string) Option {
	return func(c *config) {
		c.addr = addr
	}
}

// WithLogin sets the login credentials. The default is an anonymous login.
func WithLogin(user, password string) Option {
	return func(c *config) {
		c.user = user
		c.password = password
	}
}

// WithTimeout sets the dial timeout. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *config) {
		c.timeout = d
	}
}

type archive struct {
	cfg config
}

// NewArchive creates an Archive backed by an FTP server
func NewArchive(opts ...Option) interfaces.Archive {
	cfg := config{
		addr:     model.DefaultArchiveHost,
		user:     model.DefaultArchiveUser,
		password: model.DefaultArchiveUser,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &archive{cfg: cfg}
}

// Connect dials the server and logs in. Every call opens its own control
// connection.
func (a *archive) Connect(ctx context.Context) (interfaces.ArchiveSession, error) {
	dialOpts := []ftp.DialOption{ftp.DialWithContext(ctx)}
	if a.cfg.timeout > 0 {
		dialOpts = append(dialOpts, ftp.DialWithTimeout(a.cfg.timeout))
	}

	conn, err := ftp.Dial(a.cfg.addr, dialOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to connect archive",
			goerr.V("addr", a.cfg.addr),
			goerr.T(types.ErrTagNetwork),
		)
	}

	if err := conn.Login(a.cfg.user, a.cfg.password); err != nil {
		_ = conn.Quit()
		return nil, goerr.Wrap(err, "failed to login archive",
			goerr.V("addr", a.cfg.addr),
			goerr.V("user", a.cfg.user),
			goerr.T(types.ErrTagNetwork),
		)
	}

	return &session{conn: conn, addr: a.cfg.addr}, nil
}

type session struct {
	conn *ftp.ServerConn
	addr string
}

func (s *session) ChangeDir(dir string) error {
	if err := s.conn.ChangeDir(dir); err != nil {
		return goerr.Wrap(err, "failed to change directory",
			goerr.V("addr", s.addr),
			goerr.V("dir", dir),
			goerr.T(types.ErrTagNetwork),
		)
	}
	return nil
}

func (s *session) List() ([]string, error) {
	names, err := s.conn.NameList("")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list directory",
			goerr.V("addr", s.addr),
			goerr.T(types.ErrTagNetwork),
		)
	}
	return names, nil
}

// Retrieve streams a file into w. The context aborts the transfer between
// reads.
func (s *session) Retrieve(ctx context.Context, name string, w io.Writer) (int64, error) {
	resp, err := s.conn.Retr(name)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to start transfer",
			goerr.V("addr", s.addr),
			goerr.V("file", name),
			goerr.T(types.ErrTagNetwork),
		)
	}

	n, err := io.Copy(w, &ctxReader{ctx: ctx, r: resp})
	if err != nil {
		_ = resp.Close()
		return n, goerr.Wrap(err, "failed to transfer file",
			goerr.V("addr", s.addr),
			goerr.V("file", name),
			goerr.V("bytes", n),
			goerr.T(types.ErrTagNetwork),
		)
	}

	// Close reads the final reply; a 426/451 there means the data is truncated
	if err := resp.Close(); err != nil {
		return n, goerr.Wrap(err, "transfer not completed by server",
			goerr.V("addr", s.addr),
			goerr.V("file", name),
			goerr.V("bytes", n),
			goerr.T(types.ErrTagNetwork),
		)
	}
	return n, nil
}

func (s *session) Close() error {
	if err := s.conn.Quit(); err != nil {
		return goerr.Wrap(err, "failed to close archive session", goerr.V("addr", s.addr))
	}
	return nil
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (r *ctxReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
