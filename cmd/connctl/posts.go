package main

import (
	"github.com/spf13/cobra"

	"github.com/samvad-hq/samvad-connection/internal/domain"
	"github.com/samvad-hq/samvad-connection/internal/services"
)

func newPostsCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "posts",
		Short: "Sample post service",
	}

	var cacheFirst bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List posts, falling back to the last stored list when offline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.close()

			conn := services.NewPostService(s.rt.Deps()).GetPosts().
				UseCacheFirst(cacheFirst).
				Complete(printer[[]domain.Post](cmd.OutOrStdout()))
			if err := conn.Get(cmd.Context()); err != nil {
				return err
			}
			return s.rt.Await(cmd.Context(), conn.Done())
		},
	}
	list.Flags().BoolVar(&cacheFirst, "cache-first", false, "print the stored list before the network result")

	var post domain.Post
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := openSession(cmd.Context(), flags)
			if err != nil {
				return err
			}
			defer s.close()

			conn := services.NewPostService(s.rt.Deps()).CreatePost(post).
				Complete(printer[domain.Post](cmd.OutOrStdout()))
			if err := conn.Post(cmd.Context()); err != nil {
				return err
			}
			return s.rt.Await(cmd.Context(), conn.Done())
		},
	}
	create.Flags().IntVar(&post.UserID, "user-id", 1, "author id")
	create.Flags().StringVar(&post.Title, "title", "", "post title")
	create.Flags().StringVar(&post.Body, "body", "", "post body")
	_ = create.MarkFlagRequired("title")

	cmd.AddCommand(list, create)
	return cmd
}
