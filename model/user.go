package model

import "time"

// User is the global users/{uid} document. Profile data stays in
// Firebase Auth.
type User struct {
	UID        string     `firestore:"uid" json:"uid"`
	ProjectIDs []string   `firestore:"projectIds" json:"projectIds"`
	Files      []UserFile `firestore:"files" json:"files"`
	CreatedAt  time.Time  `firestore:"createdAt" json:"createdAt"`
}

type UserFile struct {
	URL  string `firestore:"url" json:"url"`
	Name string `firestore:"name" json:"name"`
}

// UserProfile is the public view of a Firebase Auth account.
type UserProfile struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	PhotoURL    string `json:"photoURL"`
}

// MemberProfile is a project member joined with their profile and role.
type MemberProfile struct {
	UserProfile
	RoleID    string `json:"roleId"`
	RoleLabel string `json:"roleLabel"`
	Active    bool   `json:"active"`
}

func (u *User) SetID(id string) { u.UID = id }
