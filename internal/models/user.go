package models

// UserRef is the slice of a user record the realtime core needs. The record
// itself belongs to the user service.
type UserRef struct {
	ID          string `json:"id" bson:"_id"`
	Username    string `json:"username" bson:"username"`
	DisplayName string `json:"displayName" bson:"displayName"`
	AvatarURL   string `json:"avatarUrl" bson:"avatarUrl"`
}

// Name returns the display name, falling back to the username.
func (u UserRef) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Username
}
