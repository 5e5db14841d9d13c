package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/meridian-admin/meridian/internal/assoc"
	"github.com/meridian-admin/meridian/internal/console"
	"github.com/meridian-admin/meridian/internal/directory"
	"github.com/meridian-admin/meridian/internal/policy"
	"github.com/meridian-admin/meridian/internal/shared"
)

const usage = `usage: meridian <command> [flags]

commands:
  users list                     list users with group memberships
  users save                     create/update a user (-id -national-id -name -groups)
  users delete -id N             delete a user (guard consulted)
  groups list|save|delete        manage groups (-id -name -desc -roles)
  roles list|save|delete         manage roles (-id -name -desc -permissions -resources)
  resources list|save|delete     manage resources (-id -name -category -desc)
  permissions list|save|delete   manage permissions (-id -name)
  resolve -user N                print a user's effective permission ids
  can -user N -resource R -action A   capability query (needs ACCESS_MAP_PATH)
  refresh                        re-fetch every collection
`

// Run dispatches one subcommand against the console service.
func Run(ctx context.Context, svc *console.Service, args []string) error {
	if len(args) == 0 {
		fmt.Print(usage)
		return errors.New("cli: no command given")
	}
	switch args[0] {
	case "users", "groups", "roles", "resources", "permissions":
		if len(args) < 2 {
			return fmt.Errorf("cli: %s needs a verb (list, save, delete)", args[0])
		}
		return runEntity(ctx, svc, args[0], args[1], args[2:])
	case "resolve":
		return runResolve(ctx, svc, args[1:])
	case "can":
		return runCan(ctx, svc, args[1:])
	case "refresh":
		return svc.RefreshAll(ctx)
	case "help", "-h", "--help":
		fmt.Print(usage)
		return nil
	default:
		fmt.Print(usage)
		return fmt.Errorf("cli: unknown command %q", args[0])
	}
}

func runEntity(ctx context.Context, svc *console.Service, kind, verb string, args []string) error {
	switch verb {
	case "list":
		return runList(ctx, svc, kind)
	case "save":
		return runSave(ctx, svc, kind, args)
	case "delete":
		return runDelete(ctx, svc, kind, args)
	default:
		return fmt.Errorf("cli: unknown verb %q for %s", verb, kind)
	}
}

func runList(ctx context.Context, svc *console.Service, kind string) error {
	switch kind {
	case "users":
		users, err := svc.ListUsers(ctx)
		if err != nil {
			fmt.Printf("warning: %s (showing last known data)\n", shared.UserSafeMessage(err))
		}
		for _, u := range users {
			fmt.Printf("%d\t%s\t%s\tgroups=%v\n", u.ID, u.NationalID, u.Name, refList(u.Groups))
		}
	case "groups":
		groups, err := svc.ListGroups(ctx)
		if err != nil {
			fmt.Printf("warning: %s (showing last known data)\n", shared.UserSafeMessage(err))
		}
		for _, g := range groups {
			fmt.Printf("%d\t%s\t%s\troles=%v\n", g.ID, g.Name, g.Description, refList(g.Roles))
		}
	case "roles":
		roles, err := svc.ListRoles(ctx)
		if err != nil {
			fmt.Printf("warning: %s (showing last known data)\n", shared.UserSafeMessage(err))
		}
		for _, r := range roles {
			fmt.Printf("%d\t%s\t%s\tpolicies=%d\tresources=%v\n", r.ID, r.Name, r.Description, len(r.Policies), refList(r.Resources))
		}
	case "resources":
		resources, err := svc.ListResources(ctx)
		if err != nil {
			fmt.Printf("warning: %s (showing last known data)\n", shared.UserSafeMessage(err))
		}
		for _, r := range resources {
			fmt.Printf("%d\t%s\t%s\t%s\n", r.ID, r.Name, r.Category, r.Description)
		}
	case "permissions":
		permissions, err := svc.ListPermissions(ctx)
		if err != nil {
			fmt.Printf("warning: %s (showing last known data)\n", shared.UserSafeMessage(err))
		}
		for _, p := range permissions {
			fmt.Printf("%d\t%s\n", p.ID, p.Name)
		}
	}
	return nil
}

func runSave(ctx context.Context, svc *console.Service, kind string, args []string) error {
	fs := flag.NewFlagSet(kind+" save", flag.ContinueOnError)
	id := fs.Int64("id", 0, "entity id (0 creates)")
	name := fs.String("name", "", "name")
	desc := fs.String("desc", "", "description")
	nationalID := fs.String("national-id", "", "external national identifier (users)")
	category := fs.String("category", "", "category (resources)")
	groups := fs.String("groups", "", "comma-separated group ids (users)")
	roles := fs.String("roles", "", "comma-separated role ids (groups)")
	permissions := fs.String("permissions", "", "comma-separated permission ids (roles)")
	resources := fs.String("resources", "", "comma-separated resource ids (roles)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var err error
	switch kind {
	case "users":
		groupIDs, parseErr := parseIDs(*groups)
		if parseErr != nil {
			return parseErr
		}
		_, err = svc.SaveUser(ctx, console.UserDraft{ID: *id, NationalID: *nationalID, Name: *name, GroupIDs: groupIDs})
	case "groups":
		roleIDs, parseErr := parseIDs(*roles)
		if parseErr != nil {
			return parseErr
		}
		_, err = svc.SaveGroup(ctx, console.GroupDraft{ID: *id, Name: *name, Description: *desc, RoleIDs: roleIDs})
	case "roles":
		permIDs, parseErr := parseIDs(*permissions)
		if parseErr != nil {
			return parseErr
		}
		resourceIDs, parseErr := parseIDs(*resources)
		if parseErr != nil {
			return parseErr
		}
		err = saveRole(ctx, svc, *id, *name, *desc, permIDs, resourceIDs)
	case "resources":
		_, err = svc.SaveResource(ctx, console.ResourceDraft{ID: *id, Name: *name, Category: *category, Description: *desc})
	case "permissions":
		_, err = svc.SavePermission(ctx, console.PermissionDraft{ID: *id, Name: *name})
	}
	if err != nil {
		return reportSaveError(err)
	}
	fmt.Println("saved")
	return nil
}

// saveRole handles the two-phase nature of role policies: the tuple
// subject embeds the role id, which a create does not have yet, so a new
// role is saved first and its permission tuples attached with the
// assigned id. On update the current tuples are fetched so opaque
// payloads owned by other subsystems survive the rewrite.
func saveRole(ctx context.Context, svc *console.Service, id int64, name, desc string, permIDs, resourceIDs []int64) error {
	if id == 0 {
		created, err := svc.SaveRole(ctx, console.RoleDraft{Name: name, Description: desc, ResourceIDs: resourceIDs})
		if err != nil {
			return err
		}
		if len(permIDs) == 0 {
			return nil
		}
		_, err = svc.SaveRole(ctx, console.RoleDraft{
			ID:          created.ID,
			Name:        name,
			Description: desc,
			Policies:    rolePolicies(created.ID, nil, permIDs),
			ResourceIDs: resourceIDs,
		})
		return err
	}

	roles, err := svc.ListRoles(ctx)
	if err != nil {
		return fmt.Errorf("cli: fetch current role policies: %w", err)
	}
	var existing []policy.Tuple
	for _, role := range roles {
		if role.ID == id {
			existing = role.Policies
			break
		}
	}
	_, err = svc.SaveRole(ctx, console.RoleDraft{
		ID:          id,
		Name:        name,
		Description: desc,
		Policies:    rolePolicies(id, existing, permIDs),
		ResourceIDs: resourceIDs,
	})
	return err
}

// rolePolicies rebuilds a role's tuple list: opaque tuples carry over
// unchanged, permission tuples are regenerated from the submitted set.
func rolePolicies(roleID int64, existing []policy.Tuple, permIDs []int64) []policy.Tuple {
	policies := make([]policy.Tuple, 0, len(existing)+len(permIDs))
	for _, tuple := range existing {
		if _, ok := policy.DecodeAction(tuple).PermissionID(); !ok {
			policies = append(policies, tuple)
		}
	}
	for _, permID := range permIDs {
		policies = append(policies, policy.Tuple{
			Subject: "role::" + strconv.FormatInt(roleID, 10),
			Object:  "*",
			Action:  policy.Encode(permID),
		})
	}
	return policies
}

func runDelete(ctx context.Context, svc *console.Service, kind string, args []string) error {
	fs := flag.NewFlagSet(kind+" delete", flag.ContinueOnError)
	id := fs.Int64("id", 0, "entity id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return errors.New("cli: -id is required")
	}

	var err error
	switch kind {
	case "users":
		err = svc.DeleteUser(ctx, *id)
	case "groups":
		err = svc.DeleteGroup(ctx, *id)
	case "roles":
		err = svc.DeleteRole(ctx, *id)
	case "resources":
		err = svc.DeleteResource(ctx, *id)
	case "permissions":
		err = svc.DeletePermission(ctx, *id)
	}
	var blocked *console.BlockedError
	if errors.As(err, &blocked) {
		fmt.Printf("blocked: %s\n", blocked.Decision.Reason)
		return nil
	}
	if err != nil {
		return err
	}
	fmt.Println("deleted")
	return nil
}

func runResolve(ctx context.Context, svc *console.Service, args []string) error {
	fs := flag.NewFlagSet("resolve", flag.ContinueOnError)
	userID := fs.Int64("user", 0, "user id")
	if err := fs.Parse(args); err != nil {
		return err
	}
	ids, err := svc.EffectivePermissionIDs(ctx, *userID)
	if err != nil {
		return err
	}
	fmt.Printf("effective permissions: %v\n", ids)
	return nil
}

func runCan(ctx context.Context, svc *console.Service, args []string) error {
	fs := flag.NewFlagSet("can", flag.ContinueOnError)
	userID := fs.Int64("user", 0, "user id")
	resource := fs.String("resource", "", "resource name")
	action := fs.String("action", "", "action name")
	if err := fs.Parse(args); err != nil {
		return err
	}
	allowed, err := svc.Can(ctx, *userID, *resource, *action)
	if err != nil {
		return err
	}
	fmt.Println(allowed)
	return nil
}

// reportSaveError distinguishes "nothing saved" from "entity saved but
// associations stale" for the operator.
func reportSaveError(err error) error {
	var replaceErr *assoc.ReplaceError
	if errors.As(err, &replaceErr) {
		return fmt.Errorf("entity saved, but its associations were not updated: %w", err)
	}
	return err
}

func parseIDs(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("cli: bad id %q", part)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func refList(refs []directory.Ref) []int64 {
	return directory.RefIDs(refs)
}
