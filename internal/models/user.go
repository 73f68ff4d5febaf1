package models

import "time"

// Preferences holds the topic/source/country sets a user follows.
type Preferences struct {
	Topics    []string `bson:"topics" json:"topics"`
	Sources   []string `bson:"sources" json:"sources"`
	Countries []string `bson:"countries" json:"countries"`
}

// User is an application user. PasswordHash is always set: accounts created
// through a third-party identity provider get a deterministic placeholder hash
// so the record shape stays uniform. That placeholder is write-only and is
// never accepted for password login.
type User struct {
	ID             string      `bson:"_id,omitempty" json:"id,omitempty"`
	Username       string      `bson:"username" json:"username"`
	Email          string      `bson:"email" json:"email"`
	PasswordHash   string      `bson:"password" json:"-"`
	OAuthProvider  string      `bson:"oauth_provider,omitempty" json:"oauth_provider,omitempty"`
	OAuthID        string      `bson:"oauth_id,omitempty" json:"oauth_id,omitempty"`
	Preferences    Preferences `bson:"preferences" json:"preferences"`
	ReadingHistory []string    `bson:"reading_history" json:"reading_history"`
	Bookmarks      []string    `bson:"bookmarks" json:"bookmarks"`
	LikedArticles  []string    `bson:"liked_articles" json:"liked_articles"`
	CreatedAt      time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// EmptyPreferences returns a Preferences value with non-nil empty sets.
func EmptyPreferences() Preferences {
	return Preferences{Topics: []string{}, Sources: []string{}, Countries: []string{}}
}
