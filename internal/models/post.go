package models

// Post is the part of a feed post the like flow touches. LikedBy holds the
// ids of users currently liking the post.
type Post struct {
	ID       string   `json:"id" bson:"_id"`
	AuthorID string   `json:"userId" bson:"userId"`
	Content  string   `json:"content" bson:"content"`
	LikedBy  []string `json:"-" bson:"likes"`
	Likes    int      `json:"likes" bson:"-"`
}
