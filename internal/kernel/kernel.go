// Package kernel boots the application: config, logging, the local store,
// the remote dial, the mirror, the HTTP handler and the scheduled jobs.
// Both the HTTP server and the CLI commands start from Boot.
package kernel

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/shashiranjanraj/stockmirror/app/models"
	"github.com/shashiranjanraj/stockmirror/app/repositories"
	"github.com/shashiranjanraj/stockmirror/app/routes"
	"github.com/shashiranjanraj/stockmirror/app/services"
	"github.com/shashiranjanraj/stockmirror/config"
	"github.com/shashiranjanraj/stockmirror/database/seeders"
	"github.com/shashiranjanraj/stockmirror/pkg/database"
	"github.com/shashiranjanraj/stockmirror/pkg/event"
	"github.com/shashiranjanraj/stockmirror/pkg/ids"
	"github.com/shashiranjanraj/stockmirror/pkg/kv"
	"github.com/shashiranjanraj/stockmirror/pkg/logger"
	"github.com/shashiranjanraj/stockmirror/pkg/metrics"
	"github.com/shashiranjanraj/stockmirror/pkg/middleware"
	"github.com/shashiranjanraj/stockmirror/pkg/response"
	"github.com/shashiranjanraj/stockmirror/pkg/router"
	"github.com/shashiranjanraj/stockmirror/pkg/schedule"
	"github.com/shashiranjanraj/stockmirror/pkg/storage"
)

// Job names.
const (
	JobBackup   = "mirror:backup"
	JobLowStock = "mirror:low-stock"
)

// Kernel owns every long-lived resource of a session.
type Kernel struct {
	Mirror    *services.Mirror
	Bus       *event.Bus
	Store     kv.Store
	Disks     *storage.Manager
	Scheduler *schedule.Scheduler

	closeLog func()
}

// Boot loads config, opens the local store and initialises the mirror.
// A remote that cannot be reached downgrades the session to local-only;
// only a failing local store is an error.
func Boot(ctx context.Context) (*Kernel, error) {
	if err := config.Load(); err != nil {
		return nil, fmt.Errorf("kernel: load config: %w", err)
	}
	closeLog := logger.Setup()

	store, err := kv.Open(ctx, kv.Options{
		Driver:        config.StoreDriver(),
		Dir:           config.StoreDir(),
		RedisAddr:     config.RedisAddr(),
		RedisPassword: config.RedisPassword(),
		RedisDB:       config.RedisDB(),
		RedisPrefix:   config.RedisPrefix(),
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("kernel: open local store: %w", err)
	}

	gen, err := ids.New(config.IDNode())
	if err != nil {
		_ = kv.Close(store)
		closeLog()
		return nil, fmt.Errorf("kernel: id generator: %w", err)
	}

	bus := event.New()
	mirror, err := services.New(services.Options{
		Dial:        dialer(),
		Local:       repositories.NewLocalStore(store),
		Bus:         bus,
		IDs:         gen,
		Defaults:    seeders.Defaults(),
		ActiveField: config.RemoteActiveField(),
		Timeout:     config.RemoteTimeout(),
		Log:         logger.L,
	})
	if err != nil {
		_ = kv.Close(store)
		closeLog()
		return nil, err
	}

	k := &Kernel{
		Mirror:    mirror,
		Bus:       bus,
		Store:     store,
		Disks:     storage.NewManager(ctx),
		Scheduler: schedule.New(logger.L.With("component", "scheduler")),
		closeLog:  closeLog,
	}
	k.listen()

	if err := mirror.Init(ctx); err != nil {
		k.Shutdown()
		return nil, fmt.Errorf("kernel: init mirror: %w", err)
	}
	return k, nil
}

// dialer opens the remote row-store, or returns nil when DATABASE_DSN is
// empty so the mirror starts local-only without probing.
func dialer() func(context.Context) (repositories.RowStore, error) {
	if config.DatabaseDSN() == "" {
		return nil
	}
	schema := repositories.CanonicalSchema
	if config.RemoteSchema() == "legacy" {
		schema = repositories.LegacySchema
	}
	schema.ActiveField = config.RemoteActiveField()

	return func(ctx context.Context) (repositories.RowStore, error) {
		db, err := database.Open(ctx, config.DatabaseDriver(), config.DatabaseDSN())
		if err != nil {
			return nil, err
		}
		return repositories.NewGormRowStore(db, schema), nil
	}
}

// listen logs every persisted change.
func (k *Kernel) listen() {
	log := logger.L.With("component", "events")
	_ = k.Bus.ListenAsync(services.ChangedTopic, func(payload interface{}) {
		if c, ok := payload.(models.Change); ok {
			log.Info("mirror changed", "collection", c.Collection, "op", c.Op, "id", c.ID)
		}
	})
}

// BackupDisk returns the disk named by BACKUP_DISK, or nil when it is not
// configured.
func (k *Kernel) BackupDisk() storage.Disk {
	disk, err := k.Disks.Disk(config.BackupDisk())
	if err != nil {
		logger.Warn("backups disabled", "error", err)
		return nil
	}
	return disk
}

// ─── HTTP ─────────────────────────────────────────────────────────────────────

// Router builds the router with the global middleware stack and every API
// route. disk may be nil.
func Router(m *services.Mirror, disk storage.Disk) *router.Router {
	r := router.New()

	// Outermost first.
	r.Use(metrics.Middleware())
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery)
	r.Use(middleware.Logger)
	r.Use(middleware.CORS(middleware.CORSFromConfig()))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) { response.NotFound(w) })
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	routes.RegisterAPI(r, m, disk)
	return r
}

// Handler is the HTTP handler of the booted session.
func (k *Kernel) Handler() http.Handler {
	return Router(k.Mirror, k.BackupDisk()).Handler()
}

// ─── Jobs ─────────────────────────────────────────────────────────────────────

// StartJobs registers the backup and low-stock jobs and starts the
// scheduler until ctx is done.
func (k *Kernel) StartJobs(ctx context.Context) error {
	if disk := k.BackupDisk(); disk != nil {
		err := k.Scheduler.Add(JobBackup, config.BackupSchedule(), func(ctx context.Context) {
			if _, err := k.Mirror.Backup(ctx, disk); err != nil {
				logger.Error("scheduled backup failed", "error", err)
			}
		})
		if err != nil {
			return err
		}
	}

	err := k.Scheduler.Add(JobLowStock, config.LowStockSchedule(), func(context.Context) {
		SweepLowStock(k.Mirror)
	})
	if err != nil {
		return err
	}

	k.Scheduler.Start(ctx)
	return nil
}

// SweepLowStock logs every product at or below its minimum and refreshes
// the low-stock gauge. It returns the number of such products.
func SweepLowStock(m *services.Mirror) int {
	low := m.LowStockProducts()
	metrics.LowStockProducts.Set(float64(len(low)))
	for _, p := range low {
		logger.Warn("low stock", "product", p.Name, "stockQty", p.StockQty, "stockMin", p.StockMin)
	}
	return len(low)
}

// Shutdown stops the jobs and releases the remote, the local store and the
// log sink.
func (k *Kernel) Shutdown() {
	k.Scheduler.Stop()
	k.Bus.Wait()

	if err := errors.Join(k.Mirror.Close(), kv.Close(k.Store)); err != nil {
		logger.Error("shutdown", "error", err)
	}
	k.closeLog()
}
