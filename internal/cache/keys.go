package cache

import "fmt"

// PostsGenerationKey is bumped on every post state change.
const PostsGenerationKey = "posts:gen"

// ActivePostsKey holds the public post listing.
const ActivePostsKey = "posts:active"

// ActivePostKey holds a single public post.
func ActivePostKey(id uint) string {
	return fmt.Sprintf("posts:active:%d", id)
}

// PostKeys returns every key that can hold post id.
func PostKeys(id uint) []string {
	return []string{ActivePostsKey, ActivePostKey(id)}
}
