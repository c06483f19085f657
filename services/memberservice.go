package services

import (
	"context"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
)

func ListMembers(ctx context.Context, fb *firestore.Client, projectID string) ([]model.ProjectMember, error) {
	return listDocs[model.ProjectMember](ctx, MembersRef(fb, projectID).Where("active", "==", true))
}

func GetMember(ctx context.Context, fb *firestore.Client, projectID, userID string) (model.ProjectMember, error) {
	return getDoc[model.ProjectMember](ctx, MembersRef(fb, projectID).Doc(userID), "Member not found")
}

// AddMember activates a user in the project with no role.
func AddMember(ctx context.Context, fb *firestore.Client, projectID, userID string) error {
	if userID == "" {
		return apperr.BadRequest("User id is required")
	}
	existing, err := GetMember(ctx, fb, projectID, userID)
	if err == nil && existing.Active {
		return apperr.BadRequest("User is already a member of this project")
	}
	if err != nil && !apperr.IsNotFound(err) {
		return err
	}

	b := newBulk(ctx, fb)
	b.set(MembersRef(fb, projectID).Doc(userID), model.ProjectMember{
		RoleID: model.EmptyRoleID,
		Active: true,
	})
	b.set(UsersRef(fb).Doc(userID), map[string]any{
		"projectIds": firestore.ArrayUnion(projectID),
	}, firestore.MergeAll)
	return b.end()
}

// RemoveMember deactivates a member. The owner cannot be removed.
func RemoveMember(ctx context.Context, fb *firestore.Client, projectID, userID string) error {
	member, err := GetMember(ctx, fb, projectID, userID)
	if err != nil {
		return err
	}
	if member.RoleID == model.OwnerRoleID {
		return apperr.Forbidden("The project owner cannot be removed")
	}

	b := newBulk(ctx, fb)
	b.update(MembersRef(fb, projectID).Doc(userID), []firestore.Update{{Path: "active", Value: false}})
	b.set(UsersRef(fb).Doc(userID), map[string]any{
		"projectIds": firestore.ArrayRemove(projectID),
	}, firestore.MergeAll)
	return b.end()
}

// UpdateMemberRole assigns a role. Nobody can be made owner and the owner
// keeps their role.
func UpdateMemberRole(ctx context.Context, fb *firestore.Client, projectID, userID, roleID string) error {
	if roleID == model.OwnerRoleID {
		return apperr.BadRequest("Ownership cannot be assigned")
	}
	member, err := GetMember(ctx, fb, projectID, userID)
	if err != nil {
		return err
	}
	if member.RoleID == model.OwnerRoleID {
		return apperr.Forbidden("The owner's role cannot be changed")
	}
	if roleID != model.EmptyRoleID {
		if _, err := getDoc[model.Role](ctx, RolesRef(fb, projectID).Doc(roleID), "Role not found"); err != nil {
			return err
		}
	}
	_, err = MembersRef(fb, projectID).Doc(userID).Update(ctx, []firestore.Update{{Path: "roleId", Value: roleID}})
	return err
}
