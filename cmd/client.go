package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"

	"vmforge/internal/logging"
	"vmforge/internal/server"
)

const requestTimeout = 30 * time.Second

// withClient connects to the server, runs fn with a bounded context and
// closes the connection afterwards
func withClient(fn func(ctx context.Context, c *server.Client) error) {
	conn, err := grpc.NewClient(serverAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		logging.Logger().Fatal("Did not connect", zap.Error(err))
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := fn(ctx, server.NewClient(conn)); err != nil {
		logging.Logger().Fatal("Request failed", zap.String("server", serverAddr), zap.Error(err))
	}
}

// readYAML decodes a YAML document from path into out
func readYAML(path string, out any) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(content, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// printYAML writes v to stdout as YAML
func printYAML(v any) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to render output: %w", err)
	}
	fmt.Print(string(out))
	return nil
}
