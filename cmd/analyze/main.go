// analyze submits content to a running analysis gateway and prints the
// normalized result as JSON.
//
// Usage:
//
//	analyze -mode text -input "请分析这段话"
//	analyze -mode image -input photo.png
//	analyze -mode document -input report.pdf
//	analyze -mode video-url -input https://example.com/clip.mp4
//	analyze -mode web-url -input https://example.com
package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"mime"
	"os"
	"path/filepath"
	"time"

	"github.com/modalyze/modalyze/internal/analyzer"
	"github.com/modalyze/modalyze/internal/models"
)

func main() {
	mode := flag.String("mode", "text", "one of: text, image, document, audio, video, video-url, web-url")
	input := flag.String("input", "", "text, URL, or file path depending on mode")
	gatewayURL := flag.String("gateway", "http://localhost:8787", "base URL of the gateway server")
	timeout := flag.Duration("timeout", 2*time.Minute, "overall request timeout")
	flag.Parse()

	if *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	client := analyzer.NewClient(*gatewayURL)

	var result models.AnalysisResult
	switch *mode {
	case "text":
		result = client.AnalyzeText(ctx, *input)
	case "image":
		// Data-URL form so the declared MIME type travels with the bytes.
		result = client.AnalyzeImage(ctx, fmt.Sprintf("data:%s;base64,%s", mimeFromPath(*input), encodeFile(*input)))
	case "document":
		result = client.AnalyzeDocument(ctx, encodeFile(*input), mimeFromPath(*input))
	case "audio":
		result = client.AnalyzeAudioFile(ctx, encodeFile(*input), mimeFromPath(*input))
	case "video":
		result = client.AnalyzeVideoFile(ctx, encodeFile(*input), mimeFromPath(*input))
	case "video-url":
		result = client.AnalyzeVideoURL(ctx, *input)
	case "web-url":
		result = client.AnalyzeWebURL(ctx, *input)
	default:
		log.Fatalf("unknown mode %q", *mode)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatalf("encode result: %v", err)
	}
	fmt.Println(string(out))

	if result.IsError() {
		os.Exit(1)
	}
}

func encodeFile(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("read %s: %v", path, err)
	}
	return base64.StdEncoding.EncodeToString(data)
}

func mimeFromPath(path string) string {
	if t := mime.TypeByExtension(filepath.Ext(path)); t != "" {
		return t
	}
	return "application/octet-stream"
}
