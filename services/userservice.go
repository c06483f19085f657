package services

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"tenor/apperr"
	"tenor/model"

	"cloud.google.com/go/firestore"
	"firebase.google.com/go/auth"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"google.golang.org/api/iterator"
)

const DefaultUserAvatar = "/profile.png"

// AvatarSizeLimit bounds uploaded profile pictures.
const AvatarSizeLimit = 2 * 1024 * 1024

func ProfileOf(rec *auth.UserRecord) model.UserProfile {
	if rec == nil || rec.UserInfo == nil {
		return model.UserProfile{}
	}
	return model.UserProfile{
		ID:          rec.UID,
		DisplayName: rec.DisplayName,
		Email:       rec.Email,
		PhotoURL:    rec.PhotoURL,
	}
}

// foldText lowercases s and strips diacritics so "López" matches "lop".
func foldText(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}
	return strings.ToLower(folded)
}

// matchesUser reports whether the query is a case- and accent-insensitive
// prefix of the display name, any word of it, or the email.
func matchesUser(p model.UserProfile, query string) bool {
	q := foldText(strings.TrimSpace(query))
	if q == "" {
		return true
	}
	name := foldText(p.DisplayName)
	if strings.HasPrefix(name, q) || strings.HasPrefix(strings.ToLower(p.Email), q) {
		return true
	}
	for _, word := range strings.Fields(name) {
		if strings.HasPrefix(word, q) {
			return true
		}
	}
	return false
}

// SearchUsers walks the Firebase Auth user list and returns up to limit
// matching profiles, sorted by display name.
func SearchUsers(ctx context.Context, ac *auth.Client, query string, limit int) ([]model.UserProfile, error) {
	out := []model.UserProfile{}
	iter := ac.Users(ctx, "")
	for {
		rec, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		p := ProfileOf(rec.UserRecord)
		if matchesUser(p, query) {
			out = append(out, p)
		}
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out, nil
}

func GetUserProfile(ctx context.Context, ac *auth.Client, userID string) (model.UserProfile, error) {
	rec, err := ac.GetUser(ctx, userID)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return model.UserProfile{}, apperr.NotFound("User not found")
		}
		return model.UserProfile{}, err
	}
	return ProfileOf(rec), nil
}

// GetUserProfiles looks up several users at once. Unknown ids are left out.
func GetUserProfiles(ctx context.Context, ac *auth.Client, userIDs []string) (map[string]model.UserProfile, error) {
	var mu sync.Mutex
	out := make(map[string]model.UserProfile, len(userIDs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(8)
	for _, id := range userIDs {
		g.Go(func() error {
			p, err := GetUserProfile(ctx, ac, id)
			if apperr.IsNotFound(err) {
				return nil
			}
			if err != nil {
				return err
			}
			mu.Lock()
			out[id] = p
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateProfile changes the display name and, when a data URL is given,
// uploads a new avatar.
func UpdateProfile(ctx context.Context, ac *auth.Client, store *FileStore, userID, displayName, photo string) (model.UserProfile, error) {
	params := &auth.UserToUpdate{}
	changed := false
	if name := strings.TrimSpace(displayName); name != "" {
		params = params.DisplayName(name)
		changed = true
	}
	if IsDataURL(photo) {
		url, err := store.ReplaceDataURL(ctx, "profilePictures/"+userID, photo, AvatarSizeLimit)
		if err != nil {
			return model.UserProfile{}, err
		}
		params = params.PhotoURL(url)
		changed = true
	}
	if !changed {
		return GetUserProfile(ctx, ac, userID)
	}

	rec, err := ac.UpdateUser(ctx, userID, params)
	if err != nil {
		return model.UserProfile{}, err
	}
	return ProfileOf(rec), nil
}

// EnsureUserDoc creates users/{uid} on first login.
func EnsureUserDoc(ctx context.Context, fb *firestore.Client, userID string) error {
	_, err := UsersRef(fb).Doc(userID).Create(ctx, model.User{
		UID:        userID,
		ProjectIDs: []string{},
		Files:      []model.UserFile{},
		CreatedAt:  time.Now(),
	})
	if err != nil && apperr.IsAlreadyExists(err) {
		return nil
	}
	return err
}

func GetUserDoc(ctx context.Context, fb *firestore.Client, userID string) (model.User, error) {
	return getDoc[model.User](ctx, UsersRef(fb).Doc(userID), "User not found")
}

func ListUserFiles(ctx context.Context, fb *firestore.Client, userID string) ([]model.UserFile, error) {
	user, err := GetUserDoc(ctx, fb, userID)
	if err != nil {
		return nil, err
	}
	if user.Files == nil {
		return []model.UserFile{}, nil
	}
	return user.Files, nil
}

func AddUserFile(ctx context.Context, fb *firestore.Client, userID string, file model.UserFile) error {
	_, err := UsersRef(fb).Doc(userID).Set(ctx, map[string]any{
		"files": firestore.ArrayUnion(file),
	}, firestore.MergeAll)
	return err
}

// ListMemberProfiles joins the active members of a project with their
// Firebase profile and role label.
func ListMemberProfiles(ctx context.Context, fb *firestore.Client, ac *auth.Client, projectID string) ([]model.MemberProfile, error) {
	members, err := ListMembers(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	roles, err := ListRoles(ctx, fb, projectID)
	if err != nil {
		return nil, err
	}
	labels := map[string]string{
		model.OwnerRoleID: model.OwnerRole.Label,
		model.EmptyRoleID: model.EmptyRole.Label,
	}
	for _, r := range roles {
		labels[r.ID] = r.Label
	}

	ids := make([]string, 0, len(members))
	for _, m := range members {
		ids = append(ids, m.UserID)
	}
	profiles, err := GetUserProfiles(ctx, ac, ids)
	if err != nil {
		return nil, err
	}

	out := make([]model.MemberProfile, 0, len(members))
	for _, m := range members {
		p, ok := profiles[m.UserID]
		if !ok {
			p = model.UserProfile{ID: m.UserID}
		}
		out = append(out, model.MemberProfile{
			UserProfile: p,
			RoleID:      m.RoleID,
			RoleLabel:   labels[m.RoleID],
			Active:      m.Active,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].DisplayName) < strings.ToLower(out[j].DisplayName)
	})
	return out, nil
}
