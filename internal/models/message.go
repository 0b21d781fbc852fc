package models

import (
	"strings"
	"time"
)

// MessageKind distinguishes private contact mail from public post comments.
type MessageKind string

const (
	MessageKindContact MessageKind = "contact"
	MessageKindComment MessageKind = "comment"
)

// CommentSubjectPrefix marks a message subject as a comment on a post.
const CommentSubjectPrefix = "Comment:"

// Valid reports whether k is a known message kind.
func (k MessageKind) Valid() bool {
	return k == MessageKindContact || k == MessageKindComment
}

// Message is a contact-form submission or a public comment on a post.
//
// Kind and PostRef are derived from Subject when the message is submitted:
// a subject of exactly "Comment:<postId>" makes it a comment on <postId>.
// Subject itself is stored verbatim.
type Message struct {
	ID      uint        `gorm:"primaryKey" json:"id"`
	Name    string      `json:"name"`
	Email   string      `json:"email"`
	Subject string      `gorm:"index" json:"subject"`
	Body    string      `gorm:"column:message;type:text" json:"message"`
	Kind    MessageKind `gorm:"type:varchar(16);not null;default:contact;index" json:"kind"`
	PostRef string      `gorm:"index" json:"postRef,omitempty"`
	Date    time.Time   `gorm:"index" json:"date"`
}

// CommentSubject returns the subject that tags a message as a comment on postID.
func CommentSubject(postID string) string {
	return CommentSubjectPrefix + postID
}

// ClassifySubject returns the kind encoded in subject and, for comments, the
// referenced post id.
func ClassifySubject(subject string) (MessageKind, string) {
	ref, ok := strings.CutPrefix(subject, CommentSubjectPrefix)
	if !ok || ref == "" {
		return MessageKindContact, ""
	}
	return MessageKindComment, ref
}
