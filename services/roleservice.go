package services

import (
	"context"
	"strings"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
)

// RoleResolver finds the role a user holds in a project.
type RoleResolver struct {
	FB *firestore.Client
}

func NewRoleResolver(fb *firestore.Client) *RoleResolver {
	return &RoleResolver{FB: fb}
}

// ResolveRole returns FORBIDDEN when the user is not an active member or
// their role has been removed.
func (r *RoleResolver) ResolveRole(ctx context.Context, projectID, userID string) (model.Role, error) {
	member, err := getDoc[model.ProjectMember](ctx, MembersRef(r.FB, projectID).Doc(userID), "")
	if err != nil {
		if apperr.IsNotFound(err) {
			return model.Role{}, apperr.Forbidden("User is not a member of this project")
		}
		return model.Role{}, err
	}
	if !member.Active {
		return model.Role{}, apperr.Forbidden("User is not a member of this project")
	}

	switch member.RoleID {
	case model.OwnerRoleID:
		return model.OwnerRole, nil
	case "", model.EmptyRoleID:
		return model.EmptyRole, nil
	}

	role, err := getDoc[model.Role](ctx, RolesRef(r.FB, projectID).Doc(member.RoleID), "")
	if err != nil {
		if apperr.IsNotFound(err) {
			return model.Role{}, apperr.Forbidden("Role not found")
		}
		return model.Role{}, err
	}
	return role, nil
}

func ListRoles(ctx context.Context, fb *firestore.Client, projectID string) ([]model.Role, error) {
	return listDocs[model.Role](ctx, RolesRef(fb, projectID).OrderBy("label", firestore.Asc))
}

// AddRole creates a role with no access anywhere.
func AddRole(ctx context.Context, fb *firestore.Client, projectID, label string) (model.Role, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return model.Role{}, apperr.BadRequest("Role label is required")
	}
	role := model.Role{ID: uuid.New().String(), Label: label}
	_, err := RolesRef(fb, projectID).Doc(role.ID).Set(ctx, role)
	return role, err
}

// RemoveRole deletes the role and moves its members to the empty role.
func RemoveRole(ctx context.Context, fb *firestore.Client, projectID, roleID string) error {
	ref := RolesRef(fb, projectID).Doc(roleID)
	if _, err := getDoc[model.Role](ctx, ref, "Role not found"); err != nil {
		return err
	}
	members, err := listDocs[model.ProjectMember](ctx, MembersRef(fb, projectID).Where("roleId", "==", roleID))
	if err != nil {
		return err
	}

	b := newBulk(ctx, fb)
	for _, m := range members {
		b.update(MembersRef(fb, projectID).Doc(m.UserID), []firestore.Update{{Path: "roleId", Value: model.EmptyRoleID}})
	}
	b.delete(ref)
	return b.end()
}

// UpdateRolePermission changes one flag of one role.
func UpdateRolePermission(ctx context.Context, fb *firestore.Client, projectID, roleID string, flag model.Flag, level model.Permission) error {
	ref := RolesRef(fb, projectID).Doc(roleID)
	if _, err := getDoc[model.Role](ctx, ref, "Role not found"); err != nil {
		return err
	}
	_, err := ref.Update(ctx, []firestore.Update{{Path: string(flag), Value: level}})
	return err
}

// seedRoles writes the default roles and returns their generated ids keyed
// by the default id ("admin", "developer", "viewer").
func seedRoles(b *bulk, fb *firestore.Client, projectID string) map[string]string {
	ids := map[string]string{}
	for _, role := range model.DefaultRoles() {
		id := uuid.New().String()
		ids[role.ID] = id
		b.set(RolesRef(fb, projectID).Doc(id), role)
	}
	return ids
}

// mapRoleID translates a role requested at project creation into the
// generated id. Unknown roles fall back to the empty role.
func mapRoleID(requested string, seeded map[string]string) string {
	if requested == model.OwnerRoleID {
		return model.OwnerRoleID
	}
	if id, ok := seeded[requested]; ok {
		return id
	}
	for _, id := range seeded {
		if id == requested {
			return id
		}
	}
	return model.EmptyRoleID
}
