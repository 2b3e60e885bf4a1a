package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/geosync/internal/common"
)

// ResolveDeviceCode returns the configured code when set. Otherwise the code
// stored in metadata is reused, and on first start a new one is generated
// and stored.
func ResolveDeviceCode(ctx context.Context, db *sql.DB, configured string) (string, error) {
	if code := strings.TrimSpace(configured); code != "" {
		return code, nil
	}

	repo := metadata.NewSQLiteRepository(db)
	code, err := metadata.GetString(ctx, repo, metadata.KeyDeviceCode)
	if err != nil {
		return "", fmt.Errorf("read device code: %w", err)
	}
	if code != "" {
		return code, nil
	}

	code = common.NewDeviceCode()
	if err := metadata.SetString(ctx, repo, metadata.KeyDeviceCode, code); err != nil {
		return "", fmt.Errorf("store device code: %w", err)
	}
	return code, nil
}
