package store

import "strings"

// Propriétaires du stockage navigateur.
const (
	userOwnerPrefix  = "user:"
	guestOwnerPrefix = "guest:"
)

func UserOwner(userID string) string { return userOwnerPrefix + userID }

func GuestOwner(guestID string) string { return guestOwnerPrefix + guestID }

// IsGuestOwner indique si owner désigne un visiteur non connecté.
func IsGuestOwner(owner string) bool { return strings.HasPrefix(owner, guestOwnerPrefix) }
