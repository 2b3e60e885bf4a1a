package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geosync/internal/client/client"
	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/client/services"
)

func (a *App) getStatus() string {
	s := a.deviceCode
	if m := a.Mode(); m != "" {
		if s != "" {
			s += " "
		}
		s += string(m)
	}
	if a.sync != nil && a.sync.InProgress() {
		s += " syncing"
	}
	if s != "" {
		s = fmt.Sprintf("(%s)", s)
	}
	return s
}

func (a *App) Sync(ctx context.Context) error {
	if a.sync.InProgress() {
		printlnFn("Sync already in progress.")
		return nil
	}

	report, err := a.sync.TrySync(ctx)
	switch {
	case errors.Is(err, services.ErrOffline):
		a.setMode(a.offlineMode())
		printlnFn("Offline: changes stay queued until the server is reachable.")
		return nil
	case errors.Is(err, services.ErrSyncInProgress):
		printlnFn("Sync already in progress.")
		return nil
	case err != nil:
		return err
	}

	a.setMode(ModeOnline)
	printlnFn(formatReport(report))
	return nil
}

func (a *App) offlineMode() Mode {
	if !a.remote.Configured() {
		return ModeDisabled
	}
	return ModeOffline
}

func formatReport(r *models.SyncReport) string {
	s := fmt.Sprintf("Pulled %d (applied %d, already synced %d, failed %d); pushed %d, failed %d.",
		r.Pulled, r.Applied, r.AlreadyAcked, r.PullFailures, r.Pushed, r.PushFailures)
	if r.PullError != "" {
		s += "\nPull error: " + r.PullError
	}
	return s
}

func (a *App) Status(ctx context.Context) error {
	st, err := a.sync.Status(ctx)
	if err != nil {
		return err
	}

	printlnFn("Device:     ", st.DeviceCode)
	printlnFn("Mode:       ", a.Mode())
	printlnFn("Pending:    ", st.Pending)
	if st.InProgress {
		printlnFn("Sync:        in progress")
	}
	if st.LastSyncAt == "" {
		printlnFn("Last sync:   never")
		return nil
	}
	printlnFn("Last sync:  ", st.LastSyncAt)
	if st.LastReport != nil {
		printlnFn(formatReport(st.LastReport))
	}
	return nil
}

// Reset wipes the cloud and, only if that succeeded, the local database.
func (a *App) Reset(ctx context.Context) error {
	if a.sync.InProgress() {
		printlnFn("Sync in progress, try again later.")
		return nil
	}

	ok, err := Confirm(a.reader, "This deletes ALL cloud and local data.", "RESET", a.promptWriter())
	if err != nil {
		return err
	}
	if !ok {
		printlnFn("Reset cancelled.")
		return nil
	}

	err = a.sync.ResetAll(ctx)
	switch {
	case errors.Is(err, services.ErrOffline):
		printlnFn("Offline: reset needs the server.")
		return nil
	case errors.Is(err, client.ErrUnauthorized):
		return errors.New("reset rejected: check reset_token")
	case err != nil:
		return err
	}

	printlnFn("All data deleted.")
	return nil
}
