// Package permissions holds the authorization preconditions checked before a write.
// Each check takes the acting principal and, where relevant, the resource.
package permissions

// Principal is the authenticated account acting on a request.
type Principal struct {
	UserID     uint
	IsStaff    bool
	IsVerified bool
}

// CanAttachMedia reports whether p may publish a post with a media reference.
func CanAttachMedia(p Principal) bool {
	return p.IsStaff || p.IsVerified
}

// IsAuthor reports whether p wrote the resource owned by authorID.
func IsAuthor(p Principal, authorID uint) bool {
	return p.UserID != 0 && p.UserID == authorID
}

// IsRecipient reports whether p is the addressee of a notification.
func IsRecipient(p Principal, recipientID uint) bool {
	return p.UserID != 0 && p.UserID == recipientID
}
