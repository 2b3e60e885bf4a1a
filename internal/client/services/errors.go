package services

import (
	"errors"
	"fmt"

	"github.com/dmitrijs2005/geosync/internal/common"
)

var (
	// ErrOffline is returned when the reachability gate is closed.
	ErrOffline = errors.New("offline")
	// ErrSyncInProgress is returned when another sync or reset is running.
	ErrSyncInProgress = errors.New("sync already in progress")

	errMissingUUID = fmt.Errorf("%w: missing uuid", common.ErrValidation)
)
