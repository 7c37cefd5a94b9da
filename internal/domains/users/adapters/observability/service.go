package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/campus-canteen/internal/domains/users/application/types"
	userdomain "github.com/Apurer/campus-canteen/internal/domains/users/domain"
	userports "github.com/Apurer/campus-canteen/internal/domains/users/ports"
	"github.com/Apurer/campus-canteen/internal/shared/auth"
)

const tracerName = "github.com/Apurer/campus-canteen/internal/domains/users/adapters/observability/service"

// Service decorates the user service with tracing, logging, and metrics.
type Service struct {
	inner   userports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wraps the core user service.
func New(inner userports.Service, opts ...Option) userports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Register(ctx context.Context, input types.RegisterInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Register", trace.WithAttributes(attribute.String("user.role", input.Role)))
	defer span.End()
	result, err := s.inner.Register(ctx, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to register user")
	}
	s.metrics.recordRegistered(ctx)
	s.logInfo(ctx, "user registered", slog.Int64("user_id", result.ID), slog.String("role", string(result.Role)))
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*types.LoginResult, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Login")
	defer span.End()
	result, err := s.inner.Login(ctx, email, password)
	if err != nil {
		s.metrics.recordLoginFailure(ctx)
		return nil, s.handleError(ctx, span, err, "login failed")
	}
	span.SetAttributes(attribute.Int64("user.id", result.User.ID))
	s.metrics.recordLogin(ctx)
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	ctx, span := s.tracer.Start(ctx, "UserService.Logout")
	defer span.End()
	if err := s.inner.Logout(ctx, token); err != nil {
		return s.handleError(ctx, span, err, "logout failed")
	}
	return nil
}

// Authenticate runs on every request; failures are traced but not logged.
func (s *Service) Authenticate(ctx context.Context, token string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Authenticate")
	defer span.End()
	user, err := s.inner.Authenticate(ctx, token)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int64("user.id", user.ID))
	return user, nil
}

func (s *Service) Profile(ctx context.Context, caller auth.Principal) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.Profile", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()
	return s.inner.Profile(ctx, caller)
}

func (s *Service) UpdateProfile(ctx context.Context, caller auth.Principal, input types.ProfileInput) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.UpdateProfile", trace.WithAttributes(attribute.Int64("user.id", caller.UserID)))
	defer span.End()
	result, err := s.inner.UpdateProfile(ctx, caller, input)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to update profile", slog.Int64("user_id", caller.UserID))
	}
	return result, nil
}

func (s *Service) ListUsers(ctx context.Context, caller auth.Principal, input types.ListUsersInput) ([]*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ListUsers", trace.WithAttributes(attribute.String("user.filter.role", input.Role)))
	defer span.End()
	return s.inner.ListUsers(ctx, caller, input)
}

func (s *Service) ToggleStatus(ctx context.Context, caller auth.Principal, id int64) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.ToggleStatus", trace.WithAttributes(attribute.Int64("user.id", id)))
	defer span.End()
	result, err := s.inner.ToggleStatus(ctx, caller, id)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to toggle user status", slog.Int64("user_id", id))
	}
	s.logInfo(ctx, "user status changed", slog.Int64("user_id", id), slog.Bool("active", result.Active), slog.Int64("by", caller.UserID))
	return result, nil
}

func (s *Service) SetRole(ctx context.Context, caller auth.Principal, id int64, role string) (*userdomain.User, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.SetRole", trace.WithAttributes(attribute.Int64("user.id", id), attribute.String("user.role", role)))
	defer span.End()
	result, err := s.inner.SetRole(ctx, caller, id, role)
	if err != nil {
		return nil, s.handleError(ctx, span, err, "failed to set user role", slog.Int64("user_id", id))
	}
	s.logInfo(ctx, "user role changed", slog.Int64("user_id", id), slog.String("role", string(result.Role)), slog.Int64("by", caller.UserID))
	return result, nil
}

func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, span := s.tracer.Start(ctx, "UserService.PurgeExpiredSessions")
	defer span.End()
	purged, err := s.inner.PurgeExpiredSessions(ctx)
	if err != nil {
		return 0, s.handleError(ctx, span, err, "failed to purge sessions")
	}
	s.logInfo(ctx, "expired sessions purged", slog.Int64("count", purged))
	return purged, nil
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

type serviceMetrics struct {
	registered    metric.Int64Counter
	logins        metric.Int64Counter
	loginFailures metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	registered, _ := m.Int64Counter("users.service.registered", metric.WithDescription("Number of self-service registrations"))
	logins, _ := m.Int64Counter("users.service.logins", metric.WithDescription("Number of successful logins"))
	failures, _ := m.Int64Counter("users.service.login_failures", metric.WithDescription("Number of rejected logins"))
	return serviceMetrics{registered: registered, logins: logins, loginFailures: failures}
}

func (m serviceMetrics) recordRegistered(ctx context.Context) {
	if m.registered != nil {
		m.registered.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLogin(ctx context.Context) {
	if m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordLoginFailure(ctx context.Context) {
	if m.loginFailures != nil {
		m.loginFailures.Add(ctx, 1)
	}
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var _ userports.Service = (*Service)(nil)
