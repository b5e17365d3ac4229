package main

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/yourusername/yt-fetch-go/internal/domain"
)

var (
	serverURL   string
	password    string
	noAutoStart bool
	rootCmd     = &cobra.Command{
		Use:   "ytfetch",
		Short: "ytfetch - download YouTube videos and gifs through a yt-fetch server",
		Long:  `A command-line client for the yt-fetch server. Accepts watch, shorts and youtu.be URLs or bare video IDs.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")
	rootCmd.PersistentFlags().StringVar(&password, "password", os.Getenv("AUTHENTICATION_PASSWORD"), "Shared secret sent as the pw parameter")
	rootCmd.PersistentFlags().BoolVar(&noAutoStart, "no-auto-start", false, "Don't auto-start server if not running")

	videoCmd.Flags().StringP("output", "o", ".", "Directory to save the file in")
	gifCmd.Flags().StringP("output", "o", ".", "Directory to save the file in")

	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(gifCmd)
	rootCmd.AddCommand(resolveCmd)
	rootCmd.AddCommand(healthCmd)
}

// ensureServer checks if server is running and starts it if needed (unless --no-auto-start)
func ensureServer() {
	if noAutoStart {
		return
	}
	if err := ensureServerRunning(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

var videoCmd = &cobra.Command{
	Use:   "video [url|id]",
	Short: "Download a video (under 25MB when possible)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd, domain.ModeVideo, args[0])
	},
}

var gifCmd = &cobra.Command{
	Use:   "gif [url|id]",
	Short: "Download a silent 8fps gif",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runDownload(cmd, domain.ModeGIF, args[0])
	},
}

var resolveCmd = &cobra.Command{
	Use:   "resolve [url]",
	Short: "Print the video ID of a YouTube URL",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := domain.ResolveVideoID(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(id)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show server health",
	Run: func(cmd *cobra.Command, args []string) {
		ensureServer()
		resp, err := http.Get(endpointURL("/health", nil))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()

		body, _ := io.ReadAll(resp.Body)
		if resp.StatusCode != http.StatusOK {
			fmt.Fprintf(os.Stderr, "Error: %s\n", string(body))
			os.Exit(1)
		}

		var health map[string]interface{}
		if err := json.Unmarshal(body, &health); err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid health response: %v\n", err)
			os.Exit(1)
		}
		extractor, _ := health["extractor"].(map[string]interface{})

		fmt.Println("Server Health:")
		fmt.Printf("  Status:    %v\n", health["status"])
		fmt.Printf("  Version:   %v\n", health["version"])
		fmt.Printf("  Extractor: %v (available: %v)\n", extractor["binary"], extractor["available"])
	},
}

func runDownload(cmd *cobra.Command, mode domain.Mode, input string) {
	outputDir, _ := cmd.Flags().GetString("output")

	videoID, err := resolveInput(input)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ensureServer()

	fmt.Printf("Fetching %s as %s...\n", videoID, mode)
	path, size, err := download(mode, videoID, outputDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Saved %s (%d bytes)\n", path, size)
}

// resolveInput turns a URL into a video ID; anything else is taken as an ID
func resolveInput(input string) (string, error) {
	input = strings.TrimSpace(input)
	if !domain.LooksLikeURL(input) {
		return input, nil
	}
	return domain.ResolveVideoID(input)
}

// endpointURL builds a server URL, adding the shared secret when set
func endpointURL(path string, query url.Values) string {
	if query == nil {
		query = url.Values{}
	}
	if password != "" {
		query.Set("pw", password)
	}
	u := strings.TrimRight(serverURL, "/") + path
	if encoded := query.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// download fetches /video or /gif for videoID and writes the attachment into outputDir
func download(mode domain.Mode, videoID, outputDir string) (string, int64, error) {
	resp, err := http.Get(endpointURL("/"+string(mode), url.Values{"id": {videoID}}))
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", 0, fmt.Errorf("server returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	name := filenameFromDisposition(resp.Header.Get("Content-Disposition"))
	if name == "" {
		name = videoID + mode.ExpectedExtension()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", 0, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := availablePath(filepath.Join(outputDir, name))

	// Write beside the target and rename so a failed transfer leaves nothing behind
	out, err := os.CreateTemp(outputDir, ".ytfetch-*")
	if err != nil {
		return "", 0, err
	}
	tmpPath := out.Name()

	size, err := io.Copy(out, resp.Body)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", 0, fmt.Errorf("failed to write %s: %w", path, err)
	}
	// CreateTemp makes the file private
	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return "", 0, err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return "", 0, err
	}
	return path, size, nil
}

// availablePath returns path, or "name (N).ext" when path is taken
func availablePath(path string) string {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path
	}
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)%s", base, i, ext)
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate
		}
	}
}

// filenameFromDisposition returns the base name from a Content-Disposition header
func filenameFromDisposition(header string) string {
	if header == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return ""
	}
	name := filepath.Base(params["filename"])
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	return name
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
