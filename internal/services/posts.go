// Package services holds ready-made connections for the sample post API.
package services

import (
	"strconv"

	"github.com/samvad-hq/samvad-connection/internal/domain"
	"github.com/samvad-hq/samvad-connection/pkg/connection"
	"github.com/samvad-hq/samvad-connection/pkg/parser"
)

const (
	postsEndpoint   = "/posts"
	postsOfflineKey = "posts"
)

// PostService builds connections against the posts resource.
type PostService struct {
	deps connection.Deps
}

// NewPostService returns a service whose connections share deps.
func NewPostService(deps connection.Deps) *PostService {
	return &PostService{deps: deps}
}

// GetPosts lists posts. The last list is kept offline under "posts".
func (s *PostService) GetPosts() *connection.Connection[[]domain.Post] {
	return connection.New[[]domain.Post](s.deps).
		Endpoint(postsEndpoint).
		OfflineEndpoint(postsOfflineKey).
		Parser(parser.JSON[[]domain.Post]()).
		Loader(false)
}

// GetPost fetches a single post, cached per id.
func (s *PostService) GetPost(id int) *connection.Connection[domain.Post] {
	sid := strconv.Itoa(id)
	return connection.New[domain.Post](s.deps).
		Endpoint(postsEndpoint+"/"+sid).
		OfflineEndpoint(postsOfflineKey+"/", sid).
		Parser(parser.JSON[domain.Post]()).
		Loader(false)
}

// CreatePost sends post as the payload and parses the created resource.
func (s *PostService) CreatePost(post domain.Post) *connection.Connection[domain.Post] {
	return connection.New[domain.Post](s.deps).
		Endpoint(postsEndpoint).
		Payload(post).
		Parser(parser.JSON[domain.Post]()).
		Loader(false)
}
