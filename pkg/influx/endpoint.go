package influx

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"
)

// Resolver looks up the addresses of a host name. *net.Resolver satisfies it.
type Resolver interface {
	LookupIPAddr(ctx context.Context, host string) ([]net.IPAddr, error)
}

// EndpointConfig describes the database server and the target bucket.
type EndpointConfig struct {
	Host   string
	Port   int
	Org    string
	Bucket string
	Token  string

	// AwaitResponse makes every write wait for and parse the response.
	AwaitResponse bool

	// Resolver overrides net.DefaultResolver.
	Resolver Resolver
}

// ServerEndpoint is a resolved database endpoint. It is immutable; use
// WithAwaitResponse to derive a variant.
type ServerEndpoint struct {
	host   string
	port   int
	addr   net.TCPAddr
	org    string
	bucket string
	token  string
	await  bool
}

// Resolve validates cfg and resolves its host to a single address.
// IP literals are used as is; names go through the resolver and the first
// returned address wins.
func Resolve(ctx context.Context, cfg EndpointConfig) (*ServerEndpoint, error) {
	host := strings.TrimSuffix(strings.TrimPrefix(cfg.Host, "["), "]")
	if host == "" {
		return nil, &Error{Code: CodeResolve, Op: "resolve", Err: fmt.Errorf("empty host")}
	}
	if cfg.Port <= 0 || cfg.Port > 65535 {
		return nil, &Error{Code: CodeResolve, Op: "resolve", Err: fmt.Errorf("invalid port %d", cfg.Port)}
	}

	ip := net.ParseIP(host)
	zone := ""
	if ip == nil {
		r := cfg.Resolver
		if r == nil {
			r = net.DefaultResolver
		}
		addrs, err := r.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, &Error{Code: CodeResolve, Op: "resolve " + host, Err: err}
		}
		if len(addrs) == 0 {
			return nil, &Error{Code: CodeResolve, Op: "resolve " + host, Err: fmt.Errorf("no addresses")}
		}
		ip, zone = addrs[0].IP, addrs[0].Zone
	}

	return &ServerEndpoint{
		host:   host,
		port:   cfg.Port,
		addr:   net.TCPAddr{IP: ip, Port: cfg.Port, Zone: zone},
		org:    cfg.Org,
		bucket: cfg.Bucket,
		token:  cfg.Token,
		await:  cfg.AwaitResponse,
	}, nil
}

// Host returns the host as configured (without brackets).
func (e *ServerEndpoint) Host() string { return e.host }

// Port returns the server port.
func (e *ServerEndpoint) Port() int { return e.port }

// Addr returns a copy of the resolved address.
func (e *ServerEndpoint) Addr() *net.TCPAddr {
	a := e.addr
	a.IP = append(net.IP(nil), e.addr.IP...)
	return &a
}

// Network returns "tcp4" or "tcp6" depending on the resolved address family.
func (e *ServerEndpoint) Network() string {
	if e.addr.IP.To4() != nil {
		return "tcp4"
	}
	return "tcp6"
}

// HostHeader returns the value sent in the Host header.
func (e *ServerEndpoint) HostHeader() string {
	return net.JoinHostPort(e.host, strconv.Itoa(e.port))
}

func (e *ServerEndpoint) Org() string    { return e.org }
func (e *ServerEndpoint) Bucket() string { return e.bucket }
func (e *ServerEndpoint) Token() string  { return e.token }

// AwaitResponse reports whether writes wait for the server response.
func (e *ServerEndpoint) AwaitResponse() bool { return e.await }

// WithAwaitResponse returns a copy of e with the await flag set to await.
func (e *ServerEndpoint) WithAwaitResponse(await bool) *ServerEndpoint {
	c := *e
	c.await = await
	return &c
}

func (e *ServerEndpoint) String() string {
	return fmt.Sprintf("%s (%s) org=%s bucket=%s", e.HostHeader(), e.addr.String(), e.org, e.bucket)
}
