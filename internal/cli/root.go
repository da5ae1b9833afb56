// Package cli implements hazardctl, an offline admin tool that works on the
// configured zone storage directly.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"hazard-admin/internal/catalog"
	"hazard-admin/internal/config"
	"hazard-admin/internal/logger"
	"hazard-admin/internal/notify"
	"hazard-admin/internal/services"
	"hazard-admin/internal/storage"

	"github.com/jonboulle/clockwork"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// opener loads the zone store the commands operate on.
type opener func(ctx context.Context, debug bool) (*services.ZoneStore, func() error, error)

type app struct {
	open   opener
	clock  clockwork.Clock
	debug  bool
	dryRun bool
}

func Execute() {
	a := &app{open: openConfigured, clock: clockwork.NewRealClock()}
	if err := newRootCmd(a).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "hazardctl",
		Short:        "Manage stored hazard zones",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().BoolVar(&a.debug, "debug", false, "log storage and change events to stderr")
	cmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, "run against an in-memory copy of the stored zones and save nothing")
	cmd.PersistentPostRunE = func(cmd *cobra.Command, _ []string) error {
		if a.dryRun {
			_, err := fmt.Fprintln(cmd.ErrOrStderr(), "dry run: no changes were saved")
			return err
		}
		return nil
	}

	cmd.AddCommand(
		listCmd(a),
		exportCmd(a),
		importCmd(a),
		deleteCmd(a),
		clearCmd(a),
		catalogCmd(a),
	)
	return cmd
}

// withStore opens the store, runs fn and closes the backend. With --dry-run fn
// gets a copy backed by memory and the configured backend is only read.
func (a *app) withStore(ctx context.Context, fn func(*services.ZoneStore) error) error {
	store, closeFn, err := a.open(ctx, a.debug)
	if err != nil {
		return err
	}
	defer store.Teardown()

	if a.dryRun {
		copied, err := inMemoryCopy(ctx, store)
		if err != nil {
			return errors.Join(err, closeFn())
		}
		defer copied.Teardown()
		store = copied
	}
	return errors.Join(fn(store), closeFn())
}

// inMemoryCopy seeds a MemoryStore with the zones of live. The copy has no
// listeners, so nothing is logged or published for its changes.
func inMemoryCopy(ctx context.Context, live *services.ZoneStore) (*services.ZoneStore, error) {
	mem := storage.NewMemoryStore()
	if err := mem.Save(ctx, live.List()); err != nil {
		return nil, fmt.Errorf("seed dry run: %w", err)
	}
	copied := services.NewZoneStore(mem, live.Catalog(), live.MinRadius(), zap.NewNop())
	if err := copied.Init(ctx); err != nil {
		return nil, fmt.Errorf("seed dry run: %w", err)
	}
	return copied, nil
}

// openConfigured builds the store from the same environment the server uses.
func openConfigured(ctx context.Context, debug bool) (*services.ZoneStore, func() error, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}

	logr := zap.NewNop()
	if debug {
		logr = logger.ForEnvironment(cfg.Environment).Logger
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, nil, err
	}

	p, closeStorage, err := storage.Open(ctx, cfg, logr)
	if err != nil {
		return nil, nil, err
	}

	listeners := []services.ChangeListener{notify.NewLogListener(logr)}
	closers := []func() error{closeStorage}
	if cfg.KafkaEnabled() {
		pub := notify.NewKafkaPublisher(cfg, logr)
		listeners = append(listeners, pub)
		closers = append(closers, pub.Close)
	}

	store := services.NewZoneStore(p, cat, cfg.MinRadiusMeters, logr, services.WithListeners(listeners...))
	closeAll := func() error {
		var errs []error
		for _, c := range closers {
			errs = append(errs, c())
		}
		return errors.Join(errs...)
	}
	if err := store.Init(ctx); err != nil {
		_ = closeAll()
		return nil, nil, err
	}
	return store, closeAll, nil
}

func out(cmd *cobra.Command) io.Writer {
	return cmd.OutOrStdout()
}
