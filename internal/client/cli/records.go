package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/geosync/internal/client/models"
	"github.com/dmitrijs2005/geosync/internal/common"
)

func parseTableArg(args []string, usage string) (models.Table, []string, error) {
	if len(args) == 0 {
		return "", nil, fmt.Errorf("usage: %s", usage)
	}
	t, err := models.ParseTable(args[0])
	if err != nil {
		return "", nil, err
	}
	return t, args[1:], nil
}

func (a *App) List(ctx context.Context, args []string) error {
	t, _, err := parseTableArg(args, "list <countries|states|cities>")
	if err != nil {
		return err
	}

	views, err := a.geo.List(ctx, t)
	if err != nil {
		return err
	}
	if len(views) == 0 {
		printlnFn(fmt.Sprintf("No %s.", t))
		return nil
	}

	for _, v := range views {
		printlnFn(formatRecord(v))
	}
	return nil
}

func formatRecord(v models.RecordView) string {
	s := fmt.Sprintf("%s  %s", v.UUID, v.Name)
	if v.ParentName != nil {
		s += fmt.Sprintf("  (%s)", *v.ParentName)
	} else if v.ParentUUID != nil {
		s += fmt.Sprintf("  (%s)", *v.ParentUUID)
	}
	return s
}

// Add creates a record. Missing arguments are prompted for:
//
//	add country [name]
//	add state [country_uuid] [name]
//	add city [state_uuid] [name]
func (a *App) Add(ctx context.Context, args []string) error {
	t, rest, err := parseTableArg(args, "add <country|state|city> [parent_uuid] [name]")
	if err != nil {
		return err
	}

	var rec models.Record

	if parent := t.ParentTable(); parent != "" {
		if len(rest) > 0 {
			rec.ParentUUID = models.StringPtr(rest[0])
			rest = rest[1:]
		} else {
			if err := a.List(ctx, []string{string(parent)}); err != nil {
				return err
			}
			id, err := GetRequiredText(a.reader, fmt.Sprintf("Enter %s uuid", parent.Singular()), a.promptWriter())
			if err != nil {
				return err
			}
			rec.ParentUUID = models.StringPtr(id)
		}
	}

	rec.Name = strings.Join(rest, " ")
	if rec.Name == "" {
		rec.Name, err = GetRequiredText(a.reader, fmt.Sprintf("Enter %s name", t.Singular()), a.promptWriter())
		if err != nil {
			return err
		}
	}

	id, err := a.geo.Save(ctx, t, rec)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Added %s %s (%s)", t.Singular(), rec.Name, id))
	return nil
}

func (a *App) Rename(ctx context.Context, args []string) error {
	t, rest, err := parseTableArg(args, "rename <type> <uuid> [name]")
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return errors.New("usage: rename <type> <uuid> [name]")
	}
	id, name := rest[0], strings.Join(rest[1:], " ")

	if name == "" {
		name, err = GetRequiredText(a.reader, "Enter new name", a.promptWriter())
		if err != nil {
			return err
		}
	}

	if err := a.geo.Rename(ctx, t, id, name); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return fmt.Errorf("%s %s not found", t.Singular(), id)
		}
		return err
	}
	printlnFn(fmt.Sprintf("Renamed %s %s to %s", t.Singular(), id, name))
	return nil
}

// Delete refuses records that still have live children, mirroring the
// storage-level guard with a friendlier message.
func (a *App) Delete(ctx context.Context, args []string) error {
	t, rest, err := parseTableArg(args, "delete <type> <uuid>")
	if err != nil {
		return err
	}
	if len(rest) == 0 {
		return errors.New("usage: delete <type> <uuid>")
	}
	id := rest[0]

	has, err := a.geo.HasChildren(ctx, t, id)
	if err != nil {
		return err
	}
	if has {
		printlnFn(fmt.Sprintf("Cannot delete %s %s: it still has %s.", t.Singular(), id, t.ChildTable()))
		return nil
	}

	err = a.geo.Delete(ctx, t, id)
	switch {
	case errors.Is(err, common.ErrHasChildren):
		printlnFn(fmt.Sprintf("Cannot delete %s %s: it still has %s.", t.Singular(), id, t.ChildTable()))
		return nil
	case errors.Is(err, common.ErrNotFound):
		return fmt.Errorf("%s %s not found", t.Singular(), id)
	case err != nil:
		return err
	}

	printlnFn(fmt.Sprintf("Deleted %s %s", t.Singular(), id))
	return nil
}
