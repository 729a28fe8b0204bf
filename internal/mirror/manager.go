package mirror

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/audit"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/gateway"
	"github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/membership/domain"
	userdomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/user/domain"
	workspacedomain "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/workspace/domain"
)

const instrumentationName = "github.com/ahmedmemon-design/ProjectManagementAdminPanel/internal/mirror"

// Manager owns the mirror State and is its only writer.
//
// Operations detach from the caller's cancellation: once a remote request is issued it runs to
// completion and its outcome is applied, even if the caller has gone away. Context values such as
// the trace and client IP are kept.
type Manager struct {
	gw gateway.Gateway

	mu      sync.Mutex
	state   State
	pending map[domain.Pair]struct{}

	log    *zap.Logger
	audit  audit.AuditLogger
	strict bool
	nowF   func() time.Time

	tp     trace.TracerProvider
	mp     metric.MeterProvider
	tracer trace.Tracer
	ops    metric.Int64Counter
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithAudit sets the audit logger for mutations and cascade failures.
func WithAudit(a audit.AuditLogger) Option {
	return func(m *Manager) {
		if a != nil {
			m.audit = a
		}
	}
}

// WithStrictCascade makes membership cascade failures abort parent deletes and limits role
// propagation to the memberships whose remote update succeeded.
func WithStrictCascade(strict bool) Option {
	return func(m *Manager) { m.strict = strict }
}

// WithTracerProvider overrides the global tracer provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(m *Manager) { m.tp = tp }
}

// WithMeterProvider overrides the global meter provider.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(m *Manager) { m.mp = mp }
}

// WithClock sets the time source used for LoadedAt.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.nowF = now }
}

// NewManager returns a Manager with an empty mirror over gw.
func NewManager(gw gateway.Gateway, opts ...Option) *Manager {
	m := &Manager{
		gw:      gw,
		pending: make(map[domain.Pair]struct{}),
		log:     zap.NewNop(),
		audit:   audit.Nop{},
		nowF:    time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.tp == nil {
		m.tp = otel.GetTracerProvider()
	}
	if m.mp == nil {
		m.mp = otel.GetMeterProvider()
	}
	m.tracer = m.tp.Tracer(instrumentationName)
	ops, err := m.mp.Meter(instrumentationName).Int64Counter("mirror.operations",
		metric.WithDescription("Mirror operations by op and outcome."))
	if err != nil {
		m.log.Warn("mirror: operations counter unavailable", zap.Error(err))
		ops = noop.Int64Counter{}
	}
	m.ops = ops
	return m
}

// Snapshot returns a copy of the current mirror.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.Clone()
}

// apply runs p against the current state under the lock.
func (m *Manager) apply(p Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = p(m.state)
}

func (m *Manager) start(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return m.tracer.Start(ctx, "mirror."+op, trace.WithAttributes(attrs...))
}

func (m *Manager) finish(ctx context.Context, span trace.Span, op string, err error) {
	outcome := Classify(err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(outcome))
	}
	span.SetAttributes(attribute.String("mirror.outcome", string(outcome)))
	span.End()
	m.ops.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op), attribute.String("outcome", string(outcome))))
}

// LoadResult describes a completed Load.
type LoadResult struct {
	Users       int
	Workspaces  int
	Memberships int
	// Empty is set when the store returned no users; informational, not an error.
	Empty bool
}

// Load fetches all three collections and replaces the mirror in one step. On any failure the
// previous mirror is kept. The fetches are not canceled when a sibling fails.
func (m *Manager) Load(ctx context.Context) (res LoadResult, err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "load")
	defer func() { m.finish(ctx, span, "load", err) }()

	var (
		g           errgroup.Group
		users       []userdomain.User
		workspaces  []workspacedomain.Workspace
		memberships []domain.Membership
	)
	g.Go(func() error {
		var err error
		users, err = m.gw.Users.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		workspaces, err = m.gw.Workspaces.List(ctx)
		return err
	})
	g.Go(func() error {
		var err error
		memberships, err = m.gw.Memberships.List(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		m.log.Error("mirror: load failed", zap.Error(err))
		return LoadResult{}, fmt.Errorf("load: %w", err)
	}

	m.apply(ReplaceAll(State{
		Users:       users,
		Workspaces:  workspaces,
		Memberships: memberships,
		LoadedAt:    m.nowF(),
	}))
	res = LoadResult{
		Users:       len(users),
		Workspaces:  len(workspaces),
		Memberships: len(memberships),
		Empty:       len(users) == 0,
	}
	if res.Empty {
		m.log.Info("mirror: no users found")
	}
	m.log.Debug("mirror: loaded",
		zap.Int("users", res.Users), zap.Int("workspaces", res.Workspaces), zap.Int("memberships", res.Memberships))
	return res, nil
}

// CascadeReport describes the secondary membership mutations of a parent operation.
type CascadeReport struct {
	Attempted int
	Failed    int
	// Err combines every secondary failure; nil when all succeeded.
	Err error
}

// OK reports whether every secondary mutation succeeded.
func (r CascadeReport) OK() bool { return r.Failed == 0 }

func (m *Manager) cascadeFailed(ctx context.Context, op, resource, id string, report CascadeReport) {
	m.log.Warn("mirror: cascade failed",
		zap.String("op", op),
		zap.String(resource+"_id", id),
		zap.Int("attempted", report.Attempted),
		zap.Int("failed", report.Failed),
		zap.Error(report.Err))
	m.audit.LogEvent(ctx, audit.ActionCascadeFailed, resource, id,
		fmt.Sprintf("op=%s failed=%d/%d", op, report.Failed, report.Attempted))
}

func validRole(role userdomain.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
	return nil
}

// SetUserRole updates the user's global role remotely and, once confirmed, locally. It then
// propagates the role to each of the user's memberships with one remote update per membership.
// Propagation failures are reported in the CascadeReport, never as the returned error.
func (m *Manager) SetUserRole(ctx context.Context, userID string, role userdomain.Role) (report CascadeReport, err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "set_user_role", attribute.String("user.id", userID), attribute.String("role", string(role)))
	defer func() { m.finish(ctx, span, "set_user_role", err) }()

	if userID == "" {
		return report, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if err := validRole(role); err != nil {
		return report, err
	}
	if err := m.gw.Users.UpdateRole(ctx, userID, role); err != nil {
		return report, fmt.Errorf("update user role: %w", err)
	}
	m.apply(SetUserRole(userID, role))
	m.audit.LogEvent(ctx, audit.ActionUserRoleChanged, "user", userID, "role="+string(role))

	var ids []string
	m.mu.Lock()
	for _, ms := range m.state.Memberships {
		if ms.UserID == userID {
			ids = append(ids, ms.ID)
		}
	}
	m.mu.Unlock()

	updated := make([]string, 0, len(ids))
	for _, id := range ids {
		report.Attempted++
		if err := m.gw.Memberships.UpdateRole(ctx, id, role); err != nil {
			report.Failed++
			report.Err = multierr.Append(report.Err, fmt.Errorf("membership %s: %w", id, err))
			continue
		}
		updated = append(updated, id)
	}
	if m.strict {
		m.apply(SetRoleForMemberships(updated, role))
	} else {
		m.apply(SetRoleForMemberships(ids, role))
	}
	if !report.OK() {
		m.cascadeFailed(ctx, "set_user_role", "user", userID, report)
	}
	return report, nil
}

// DeleteUser removes the user's memberships remotely, then the user. The mirror drops the user and
// all of its memberships once the user delete is confirmed.
func (m *Manager) DeleteUser(ctx context.Context, userID string) (report CascadeReport, err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "delete_user", attribute.String("user.id", userID))
	defer func() { m.finish(ctx, span, "delete_user", err) }()

	if userID == "" {
		return report, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	return m.deleteParent(ctx, "delete_user", "user", userID,
		m.gw.Memberships.DeleteByUser, m.gw.Users.Delete, RemoveUser(userID), audit.ActionUserDeleted)
}

// DeleteWorkspace removes the workspace's memberships remotely, then the workspace.
func (m *Manager) DeleteWorkspace(ctx context.Context, workspaceID string) (report CascadeReport, err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "delete_workspace", attribute.String("workspace.id", workspaceID))
	defer func() { m.finish(ctx, span, "delete_workspace", err) }()

	if workspaceID == "" {
		return report, fmt.Errorf("%w: workspace id is required", ErrInvalidInput)
	}
	return m.deleteParent(ctx, "delete_workspace", "workspace", workspaceID,
		m.gw.Memberships.DeleteByWorkspace, m.gw.Workspaces.Delete, RemoveWorkspace(workspaceID), audit.ActionWorkspaceDeleted)
}

func (m *Manager) deleteParent(
	ctx context.Context,
	op, resource, id string,
	cascade, remove func(context.Context, string) error,
	patch Patch,
	action string,
) (CascadeReport, error) {
	report := CascadeReport{Attempted: 1}
	if err := cascade(ctx, id); err != nil {
		report.Failed = 1
		report.Err = err
		m.cascadeFailed(ctx, op, resource, id, report)
		if m.strict {
			return report, fmt.Errorf("delete %s %s: %w: %w", resource, id, ErrCascadeFailed, err)
		}
	}
	if err := remove(ctx, id); err != nil {
		return report, fmt.Errorf("delete %s: %w", resource, err)
	}
	m.apply(patch)
	m.audit.LogEvent(ctx, action, resource, id, "")
	return report, nil
}

// RemoveMembership deletes one membership remotely and then locally.
func (m *Manager) RemoveMembership(ctx context.Context, membershipID string) (err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "remove_membership", attribute.String("membership.id", membershipID))
	defer func() { m.finish(ctx, span, "remove_membership", err) }()

	if membershipID == "" {
		return fmt.Errorf("%w: membership id is required", ErrInvalidInput)
	}
	if err := m.gw.Memberships.Delete(ctx, membershipID); err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	m.apply(RemoveMembership(membershipID))
	m.audit.LogEvent(ctx, audit.ActionMembershipRemoved, "membership", membershipID, "")
	return nil
}

// AddMembership inserts a membership for the pair unless it is already mirrored or being added
// concurrently, in which case ErrDuplicateMembership is returned without a remote call.
// An empty role means member.
func (m *Manager) AddMembership(ctx context.Context, userID, workspaceID string, role userdomain.Role) (created *domain.Membership, err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "add_membership",
		attribute.String("user.id", userID), attribute.String("workspace.id", workspaceID), attribute.String("role", string(role)))
	defer func() { m.finish(ctx, span, "add_membership", err) }()

	if userID == "" || workspaceID == "" {
		return nil, fmt.Errorf("%w: user id and workspace id are required", ErrInvalidInput)
	}
	if role == "" {
		role = userdomain.RoleMember
	}
	if err := validRole(role); err != nil {
		return nil, err
	}

	pair := domain.Pair{UserID: userID, WorkspaceID: workspaceID}
	m.mu.Lock()
	_, inFlight := m.pending[pair]
	if inFlight || m.state.HasMembership(pair) {
		m.mu.Unlock()
		return nil, ErrDuplicateMembership
	}
	m.pending[pair] = struct{}{}
	m.mu.Unlock()

	row, err := m.gw.Memberships.Create(ctx, userID, workspaceID, role)
	if err == nil && row == nil {
		err = errors.New("remote returned no membership")
	}

	m.mu.Lock()
	delete(m.pending, pair)
	if err != nil {
		m.mu.Unlock()
		return nil, fmt.Errorf("add membership: %w", err)
	}
	out := m.resolveEmbeds(*row)
	m.state = AppendMembership(out)(m.state)
	m.mu.Unlock()

	m.audit.LogEvent(ctx, audit.ActionMembershipAdded, "membership", out.ID,
		fmt.Sprintf("user=%s workspace=%s role=%s", userID, workspaceID, role))
	out = cloneMembership(out)
	return &out, nil
}

// resolveEmbeds fills summaries the store did not embed from the mirror. Caller must hold m.mu.
func (m *Manager) resolveEmbeds(ms domain.Membership) domain.Membership {
	if ms.User == nil {
		if u, ok := m.state.FindUser(ms.UserID); ok {
			sum := u.Summary()
			ms.User = &sum
		}
	}
	if ms.Workspace == nil {
		if w, ok := m.state.FindWorkspace(ms.WorkspaceID); ok {
			sum := w.Summary()
			ms.Workspace = &sum
		}
	}
	return ms
}

// SetMembershipRole updates one membership's role remotely and then locally.
func (m *Manager) SetMembershipRole(ctx context.Context, membershipID string, role userdomain.Role) (err error) {
	ctx = context.WithoutCancel(ctx)
	ctx, span := m.start(ctx, "set_membership_role", attribute.String("membership.id", membershipID), attribute.String("role", string(role)))
	defer func() { m.finish(ctx, span, "set_membership_role", err) }()

	if membershipID == "" {
		return fmt.Errorf("%w: membership id is required", ErrInvalidInput)
	}
	if err := validRole(role); err != nil {
		return err
	}
	if err := m.gw.Memberships.UpdateRole(ctx, membershipID, role); err != nil {
		return fmt.Errorf("update membership role: %w", err)
	}
	m.apply(SetMembershipRole(membershipID, role))
	m.audit.LogEvent(ctx, audit.ActionMembershipRoleChanged, "membership", membershipID, "role="+string(role))
	return nil
}
