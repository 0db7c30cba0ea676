package posts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/scribeworks/blog-backend/cmd/cli/config"
	"github.com/scribeworks/blog-backend/cmd/cli/output"
	"github.com/scribeworks/blog-backend/cmd/cli/root"
	"github.com/spf13/cobra"
)

type post struct {
	ID        int    `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Slug      string `json:"slug"`
	Published bool   `json:"published"`
	CreatedAt string `json:"createdAt"`
}

// ==========================
// Init Posts
// ==========================
func init() {
	postsCmd := &cobra.Command{
		Use:   "posts",
		Short: "Manage blog posts",
	}

	postsCmd.AddCommand(
		listPostsCmd(),
		getPostCmd(),
		createPostCmd(),
		deletePostCmd(),
	)

	root.GetRoot().AddCommand(postsCmd)
}

// ==========================
// LIST
// ==========================
func listPostsCmd() *cobra.Command {
	var page int
	var limit int
	var author string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List published posts",
		Run: func(cmd *cobra.Command, args []string) {
			path := fmt.Sprintf("/api/posts?page=%d&limit=%d", page, limit)
			if author != "" {
				path = "/api/posts/user/" + author
			}

			resp, err := http.Get(config.APIURL() + path)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out struct {
				Posts []post `json:"posts"`
				Total int    `json:"total"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				fmt.Println(err)
				return
			}

			rows := make([][]interface{}, 0, len(out.Posts))
			for _, p := range out.Posts {
				rows = append(rows, []interface{}{p.ID, p.Title, p.Author, p.Slug, p.CreatedAt})
			}

			output.RenderTable([]string{"ID", "Title", "Author", "Slug", "Created"}, rows)
			fmt.Printf("Total: %d\n", out.Total)
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "page number")
	cmd.Flags().IntVar(&limit, "limit", 10, "posts per page")
	cmd.Flags().StringVar(&author, "author", "", "list posts by this author instead")

	return cmd
}

// ==========================
// GET
// ==========================
func getPostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get [id]",
		Short: "Show a single post",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			resp, err := http.Get(config.APIURL() + "/api/posts/" + args[0])
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}
}

// ==========================
// CREATE
// ==========================
func createPostCmd() *cobra.Command {
	var title string
	var description string
	var content string
	var published bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a post",
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			payload := map[string]interface{}{
				"title":       title,
				"description": description,
				"content":     content,
				"published":   published,
			}
			body, _ := json.Marshal(payload)

			req, _ := http.NewRequest("POST", config.APIURL()+"/api/posts", bytes.NewBuffer(body))
			req.Header.Set("Authorization", "Bearer "+token)
			req.Header.Set("Content-Type", "application/json")

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			var out any
			json.NewDecoder(resp.Body).Decode(&out)
			b, _ := json.MarshalIndent(out, "", "  ")
			fmt.Println(string(b))
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "post title")
	cmd.Flags().StringVar(&description, "description", "", "short description")
	cmd.Flags().StringVar(&content, "content", "", "post body")
	cmd.Flags().BoolVar(&published, "published", false, "publish immediately")

	return cmd
}

// ==========================
// DELETE
// ==========================
func deletePostCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete [id]",
		Short: "Delete a post",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			token, err := config.ReadToken()
			if err != nil {
				fmt.Println("Please login first")
				return
			}

			if _, err := strconv.Atoi(args[0]); err != nil {
				fmt.Println("Post ID must be a number")
				return
			}

			req, _ := http.NewRequest("DELETE", config.APIURL()+"/api/posts/"+args[0], nil)
			req.Header.Set("Authorization", "Bearer "+token)

			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				fmt.Println(err)
				return
			}
			defer resp.Body.Close()

			if resp.StatusCode == http.StatusOK {
				fmt.Println("Post deleted")
				return
			}
			b, _ := io.ReadAll(resp.Body)
			fmt.Println("Failed to delete post:", string(b))
		},
	}
}
