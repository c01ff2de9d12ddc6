package notify

import (
	"context"
	"fmt"
	"time"

	"fincore/internal/cache"
	"fincore/internal/core"
	"fincore/internal/log"
)

const (
	// DefaultDebounceWindow drops identical drafts created in quick
	// succession.
	DefaultDebounceWindow = 10 * time.Second

	// Retention limits enforced by stores that support pruning.
	RetentionAge     = 30 * 24 * time.Hour
	RetentionRecords = 100
)

// Outcome describes what CreateNotification did with a draft.
type Outcome string

const (
	Created   Outcome = "created"
	Duplicate Outcome = "duplicate" // a record with the same id already exists
	Debounced Outcome = "debounced"
	Disabled  Outcome = "disabled"
)

// Result is returned by CreateNotification.
type Result struct {
	ID      string
	Outcome Outcome
	Popup   bool
}

// Options configure a Manager. Zero fields take defaults.
type Options struct {
	DebounceWindow time.Duration
	Preferences    func() core.Preferences
	Now            func() time.Time
	Logger         *log.Logger
}

// Manager is the single entry point through which evaluators create
// notifications. It is not safe for concurrent use.
type Manager struct {
	store    Store
	queue    *PopupQueue
	prefs    func() core.Preferences
	now      func() time.Time
	debounce *cache.TTLMap[struct{}]
	logger   *log.Logger
}

// NewManager wires a manager to its store. queue may be nil when popups
// are not presented.
func NewManager(store Store, queue *PopupQueue, opts Options) *Manager {
	if opts.DebounceWindow <= 0 {
		opts.DebounceWindow = DefaultDebounceWindow
	}
	if opts.Preferences == nil {
		opts.Preferences = core.DefaultPreferences
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = log.FromContext(context.Background())
	}
	return &Manager{
		store:    store,
		queue:    queue,
		prefs:    opts.Preferences,
		now:      opts.Now,
		debounce: cache.NewTTLMap[struct{}](opts.DebounceWindow),
		logger:   opts.Logger.WithComponent(log.ComponentNotify),
	}
}

// CreateNotification filters, deduplicates and persists a draft.
//
// Drafts of a disabled type or repeated inside the debounce window are
// dropped. During quiet hours the record is still stored but no popup is
// queued. Store failures are logged and returned wrapping
// core.ErrPersistence.
func (m *Manager) CreateNotification(ctx context.Context, d core.Draft) (Result, error) {
	prefs := m.prefs()
	now := m.now()

	if !prefs.IsEnabled(d.Type) {
		m.logger.DebugContext(ctx, "Notification type disabled", log.FieldNotifyType, string(d.Type))
		return Result{Outcome: Disabled}, nil
	}

	key := debounceKey(d)
	if _, ok := m.debounce.Get(key, now); ok {
		m.logger.DebugContext(ctx, "Notification debounced", log.FieldNotifyType, string(d.Type), "title", d.Title)
		return Result{Outcome: Debounced}, nil
	}

	n := core.Notification{
		ID:        DeterministicID(d.Type, now, d.Metadata),
		Type:      d.Type,
		Severity:  d.Severity,
		Title:     d.Title,
		Message:   d.Message,
		DeepLink:  d.DeepLink,
		Metadata:  copyMetadata(d.Metadata),
		CreatedAt: now,
	}

	created, err := m.store.InsertIfAbsent(ctx, n)
	if err != nil {
		m.logger.LogError(ctx, "Failed to persist notification", err, log.OpCreate,
			log.NewFields().WithNotification(n.ID, string(n.Type)))
		return Result{ID: n.ID}, fmt.Errorf("persist notification %s: %w: %w", n.ID, core.ErrPersistence, err)
	}
	m.debounce.Set(key, struct{}{}, now)

	if !created {
		return Result{ID: n.ID, Outcome: Duplicate}, nil
	}

	res := Result{ID: n.ID, Outcome: Created}
	if m.queue != nil && !prefs.QuietHours.Active(now) {
		m.queue.Enqueue(n)
		res.Popup = true
	}

	m.logger.InfoContext(ctx, "Notification created",
		log.FieldNotificationID, n.ID,
		log.FieldNotifyType, string(n.Type),
		"severity", string(n.Severity),
		"popup", res.Popup)

	return res, nil
}

// Sweep evicts stale debounce entries. It implements cache.Sweeper.
func (m *Manager) Sweep(now time.Time) int {
	return m.debounce.Sweep(now)
}

func copyMetadata(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
