package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

func main() {
	baseURL := os.Getenv("IDRESOLVE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	// 1. Resolve a profile
	fmt.Println("1. Resolving profile...")
	resolve := map[string]interface{}{
		"target": map[string]string{"contact_address": "ipetrov@msu.ru"},
		"extractions": []map[string]string{
			{"value": "Иван Петров", "field_type": "name", "source_url": "https://msu.ru/staff/ipetrov", "source_type": "title"},
			{"value": "Петров И.", "field_type": "name", "source_url": "https://istina.msu.ru/profile/ipetrov", "source_type": "content"},
			{"value": "Иван Петров", "field_type": "name", "source_url": "https://elibrary.ru/author/1", "source_type": "meta"},
			{"value": "ipetrov@msu.ru", "field_type": "contact_address", "source_url": "https://msu.ru/staff/ipetrov", "source_type": "content"},
			{"value": "Московский государственный университет", "field_type": "organization", "source_url": "https://msu.ru/staff/ipetrov", "source_type": "meta"},
			{"value": "доцент", "field_type": "position", "source_url": "https://msu.ru/staff/ipetrov", "source_type": "content"},
		},
	}
	check(sendRequest(baseURL, http.MethodPost, "/v1/profiles/resolve", resolve, http.StatusOK), "Resolve profile")

	// 2. Rank candidates
	fmt.Println("2. Ranking candidates...")
	rank := map[string]interface{}{
		"target": map[string]string{"name": "Ivan Petrov", "contact_address": "ipetrov@msu.ru", "context_tag": "academic"},
		"candidates": []map[string]interface{}{
			{"identifier": "0000-0002-1825-0097", "source_url": "https://orcid.org/0000-0002-1825-0097", "search_position": 0},
			{"identifier": "0000-0001-5109-3700", "source_url": "https://orcid.org/0000-0001-5109-3700", "search_position": 1},
		},
	}
	check(sendRequest(baseURL, http.MethodPost, "/v1/candidates/rank", rank, http.StatusOK), "Rank candidates")

	// 3. Feedback
	fmt.Println("3. Recording feedback...")
	fb := map[string]interface{}{
		"contact_address":     "ipetrov@msu.ru",
		"selected_id":         "0000-0002-1825-0097",
		"correct_id":          "0000-0002-1825-0097",
		"reporter_confidence": 0.9,
	}
	check(sendRequest(baseURL, http.MethodPost, "/v1/feedback", fb, http.StatusCreated), "Record feedback")
	check(sendRequest(baseURL, http.MethodGet, "/v1/feedback/stats", nil, http.StatusOK), "Feedback stats")
}

func check(ok bool, step string) {
	if !ok {
		fmt.Printf("FAILED: %s\n", step)
		os.Exit(1)
	}
	fmt.Printf("PASSED: %s\n", step)
}

func sendRequest(baseURL, method, endpoint string, payload interface{}, want int) bool {
	var body io.Reader
	if payload != nil {
		jsonBytes, _ := json.Marshal(payload)
		body = bytes.NewBuffer(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL+endpoint, body)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != want {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	return true
}
