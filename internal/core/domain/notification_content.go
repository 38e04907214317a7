package domain

import "fmt"

// User-facing notification copy. Kept in one place so the realtime push and
// the persisted inbox row always carry the same text.

// RecommendationContent returns the title and message for a place
// recommendation.
func RecommendationContent(placeName string) (string, string) {
	return "Recomendación", fmt.Sprintf("Te recomendamos visitar %s", placeName)
}

// NewCommentContent returns the title and message for a new comment on the
// recipient's place.
func NewCommentContent(authorName, placeName string) (string, string) {
	return "Nuevo comentario", fmt.Sprintf("%s comentó en %s", authorName, placeName)
}

// CommentReplyContent returns the title and message for a reply to the
// recipient's comment.
func CommentReplyContent(authorName string) (string, string) {
	return "Respuesta a tu comentario", fmt.Sprintf("%s respondió a tu comentario", authorName)
}

// CommentLikeContent returns the title and message for a like on the
// recipient's comment.
func CommentLikeContent(authorName string) (string, string) {
	return "Me gusta", fmt.Sprintf("A %s le gustó tu comentario", authorName)
}

// CommentDislikeContent returns the title and message for a dislike on the
// recipient's comment.
func CommentDislikeContent(authorName string) (string, string) {
	return "No me gusta", fmt.Sprintf("A %s no le gustó tu comentario", authorName)
}

// EventRSVPContent returns the title and message for an RSVP to the
// recipient's event.
func EventRSVPContent(attendeeName, eventName string) (string, string) {
	return "Confirmación de asistencia", fmt.Sprintf("%s asistirá a %s", attendeeName, eventName)
}
