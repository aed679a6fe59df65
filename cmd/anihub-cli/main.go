// anihub-cli is a thin client for the anihub API: browse the catalog,
// manage the account lists and tail the live sync stream from a
// terminal.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const defaultBaseURL = "http://localhost:8080"

type tokenData struct {
	Token string `json:"token"`
}

type authResponse struct {
	Token string `json:"token"`
}

func main() {
	global := flag.NewFlagSet("anihub", flag.ExitOnError)
	baseURL := global.String("api", defaultBaseURL, "API base URL")
	tokenPath := global.String("token", defaultTokenPath(), "token file path")
	if err := global.Parse(os.Args[1:]); err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	args := global.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}

	ctx := context.Background()
	cmd := args[0]
	sub := ""
	if len(args) > 1 {
		sub = args[1]
	}

	client := &http.Client{Timeout: 30 * time.Second}

	switch cmd {
	case "auth":
		handleAuth(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "anime":
		handleAnime(ctx, client, *baseURL, sub, args[2:])
	case "favorites":
		handleFavorites(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "watchlist":
		handleWatchlist(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "history":
		handleHistory(ctx, client, *baseURL, *tokenPath, sub, args[2:])
	case "sync":
		handleSync(*baseURL, *tokenPath, sub, args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
}

func handleAuth(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "login":
		fs := flag.NewFlagSet("auth login", flag.ExitOnError)
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *email == "" || *password == "" {
			log.Fatal("email and password are required")
		}

		payload := map[string]string{"email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/login", "", payload, &resp); err != nil {
			log.Fatalf("login failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("logged in")
	case "register":
		fs := flag.NewFlagSet("auth register", flag.ExitOnError)
		username := fs.String("username", "", "username")
		email := fs.String("email", "", "email address")
		password := fs.String("password", "", "password")
		_ = fs.Parse(args)

		if *username == "" || *email == "" || *password == "" {
			log.Fatal("username, email, and password are required")
		}

		payload := map[string]string{"username": *username, "email": *email, "password": *password}
		var resp authResponse
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/auth/register", "", payload, &resp); err != nil {
			log.Fatalf("register failed: %v", err)
		}
		if err := saveToken(tokenPath, resp.Token); err != nil {
			log.Fatalf("save token: %v", err)
		}
		fmt.Println("registered and logged in")
	case "logout":
		if err := clearToken(tokenPath); err != nil {
			log.Fatalf("logout failed: %v", err)
		}
		fmt.Println("logged out")
	default:
		log.Fatal("usage: anihub auth <login|register|logout>")
	}
}

func handleAnime(ctx context.Context, client *http.Client, baseURL, sub string, args []string) {
	switch sub {
	case "show":
		fs := flag.NewFlagSet("anime show", flag.ExitOnError)
		id := fs.String("id", "", "anime id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("anime id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/v1/anime/"+url.PathEscape(*id), "", nil, &resp); err != nil {
			log.Fatalf("show failed: %v", err)
		}
		printJSON(resp)
	case "search":
		fs := flag.NewFlagSet("anime search", flag.ExitOnError)
		query := fs.String("q", "", "search query")
		limit := fs.Int("limit", 10, "result count")
		_ = fs.Parse(args)
		if *query == "" {
			log.Fatal("search query is required")
		}

		u := fmt.Sprintf("%s/api/v1/search?q=%s&limit=%d", baseURL, url.QueryEscape(*query), *limit)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u, "", nil, &resp); err != nil {
			log.Fatalf("search failed: %v", err)
		}
		printJSON(resp)
	case "top", "seasonal", "trending":
		fs := flag.NewFlagSet("anime "+sub, flag.ExitOnError)
		limit := fs.Int("limit", 10, "result count")
		_ = fs.Parse(args)

		u := fmt.Sprintf("%s/api/v1/%s?limit=%d", baseURL, sub, *limit)
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, u, "", nil, &resp); err != nil {
			log.Fatalf("%s failed: %v", sub, err)
		}
		printJSON(resp)
	case "related":
		fs := flag.NewFlagSet("anime related", flag.ExitOnError)
		id := fs.String("id", "", "anime id")
		_ = fs.Parse(args)
		if *id == "" {
			log.Fatal("anime id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/v1/anime/"+url.PathEscape(*id)+"/related", "", nil, &resp); err != nil {
			log.Fatalf("related failed: %v", err)
		}
		printJSON(resp)
	case "schedule":
		fs := flag.NewFlagSet("anime schedule", flag.ExitOnError)
		weekly := fs.Bool("weekly", false, "full weekly schedule instead of popular broadcasts")
		_ = fs.Parse(args)

		endpoint := baseURL + "/api/v1/schedule"
		if *weekly {
			endpoint += "/weekly"
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, "", nil, &resp); err != nil {
			log.Fatalf("schedule failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anihub anime <show|search|top|seasonal|trending|related|schedule>")
	}
}

func handleFavorites(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("favorites add", flag.ExitOnError)
		animeID := fs.String("anime-id", "", "anime id")
		title := fs.String("title", "", "anime title")
		_ = fs.Parse(args)
		if *animeID == "" || *title == "" {
			log.Fatal("anime-id and title are required")
		}

		payload := map[string]any{"anime_id": *animeID, "title": *title}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/v1/favorites", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "remove":
		fs := flag.NewFlagSet("favorites remove", flag.ExitOnError)
		animeID := fs.String("anime-id", "", "anime id")
		_ = fs.Parse(args)
		if *animeID == "" {
			log.Fatal("anime-id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/api/v1/favorites/"+url.PathEscape(*animeID), token, nil, &resp); err != nil {
			log.Fatalf("remove failed: %v", err)
		}
		printJSON(resp)
	case "list":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/v1/favorites", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anihub favorites <add|remove|list>")
	}
}

func handleWatchlist(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "set":
		fs := flag.NewFlagSet("watchlist set", flag.ExitOnError)
		animeID := fs.String("anime-id", "", "anime id")
		title := fs.String("title", "", "anime title")
		status := fs.String("status", "watching", "watching|planned|completed|dropped")
		episode := fs.Int("episode", 0, "current episode")
		_ = fs.Parse(args)
		if *animeID == "" {
			log.Fatal("anime-id is required")
		}

		payload := map[string]any{
			"anime_id":        *animeID,
			"title":           *title,
			"status":          *status,
			"current_episode": *episode,
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/v1/watchlist", token, payload, &resp); err != nil {
			log.Fatalf("set failed: %v", err)
		}
		printJSON(resp)
	case "remove":
		fs := flag.NewFlagSet("watchlist remove", flag.ExitOnError)
		animeID := fs.String("anime-id", "", "anime id")
		_ = fs.Parse(args)
		if *animeID == "" {
			log.Fatal("anime-id is required")
		}

		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/api/v1/watchlist/"+url.PathEscape(*animeID), token, nil, &resp); err != nil {
			log.Fatalf("remove failed: %v", err)
		}
		printJSON(resp)
	case "list":
		fs := flag.NewFlagSet("watchlist list", flag.ExitOnError)
		status := fs.String("status", "", "status filter")
		_ = fs.Parse(args)

		endpoint := baseURL + "/api/v1/watchlist"
		if *status != "" {
			endpoint += "?status=" + url.QueryEscape(*status)
		}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, endpoint, token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anihub watchlist <set|remove|list>")
	}
}

func handleHistory(ctx context.Context, client *http.Client, baseURL, tokenPath, sub string, args []string) {
	token := mustToken(tokenPath)
	switch sub {
	case "add":
		fs := flag.NewFlagSet("history add", flag.ExitOnError)
		animeID := fs.String("anime-id", "", "anime id")
		title := fs.String("title", "", "anime title")
		episode := fs.Int("episode", 1, "watched episode")
		_ = fs.Parse(args)
		if *animeID == "" {
			log.Fatal("anime-id is required")
		}

		payload := map[string]any{"anime_id": *animeID, "title": *title, "episode": *episode}
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodPost, baseURL+"/api/v1/history", token, payload, &resp); err != nil {
			log.Fatalf("add failed: %v", err)
		}
		printJSON(resp)
	case "list":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodGet, baseURL+"/api/v1/history", token, nil, &resp); err != nil {
			log.Fatalf("list failed: %v", err)
		}
		printJSON(resp)
	case "clear":
		var resp map[string]any
		if err := doJSON(ctx, client, http.MethodDelete, baseURL+"/api/v1/history", token, nil, &resp); err != nil {
			log.Fatalf("clear failed: %v", err)
		}
		printJSON(resp)
	default:
		log.Fatal("usage: anihub history <add|list|clear>")
	}
}

func handleSync(baseURL, tokenPath, sub string, args []string) {
	switch sub {
	case "listen":
		token := mustToken(tokenPath)
		endpoint, err := websocketURL(baseURL, "/api/v1/ws")
		if err != nil {
			log.Fatalf("ws url: %v", err)
		}
		for {
			if err := runWebSocket(endpoint, token); err != nil {
				log.Printf("[sync] disconnected: %v", err)
			}
			time.Sleep(1 * time.Second)
		}
	default:
		log.Fatal("usage: anihub sync listen")
	}
}

func runWebSocket(wsURL, token string) error {
	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		return err
	}
	defer conn.Close()
	log.Printf("[sync] connected to %s", wsURL)
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		fmt.Println(string(msg))
	}
}

func doJSON(ctx context.Context, client *http.Client, method, endpoint, token string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = strings.NewReader(string(b))
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s failed: %s", method, endpoint, strings.TrimSpace(string(data)))
	}
	if out == nil {
		return nil
	}
	return json.Unmarshal(data, out)
}

func printJSON(v any) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		log.Fatalf("json: %v", err)
	}
	fmt.Println(string(b))
}

func defaultTokenPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./.anihub-token.json"
	}
	return filepath.Join(home, ".anihub", "token.json")
}

func saveToken(path, token string) error {
	if token == "" {
		return errors.New("empty token")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(tokenData{Token: token}, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

func readToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	var td tokenData
	if err := json.Unmarshal(data, &td); err != nil {
		return "", err
	}
	return strings.TrimSpace(td.Token), nil
}

func mustToken(path string) string {
	token, err := readToken(path)
	if err != nil {
		log.Fatalf("token not found, please login: %v", err)
	}
	if token == "" {
		log.Fatal("token empty, please login")
	}
	return token
}

func clearToken(path string) error {
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func websocketURL(baseURL, path string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	scheme := "ws"
	if u.Scheme == "https" {
		scheme = "wss"
	}
	return (&url.URL{
		Scheme: scheme,
		Host:   u.Host,
		Path:   path,
	}).String(), nil
}

func printUsage() {
	fmt.Println("anihub <command> [subcommand] [flags]")
	fmt.Println("commands:")
	fmt.Println("  auth login|register|logout")
	fmt.Println("  anime show|search|top|seasonal|trending|related|schedule")
	fmt.Println("  favorites add|remove|list")
	fmt.Println("  watchlist set|remove|list")
	fmt.Println("  history add|list|clear")
	fmt.Println("  sync listen")
}
