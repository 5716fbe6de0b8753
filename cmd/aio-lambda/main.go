// aio-lambda runs scheduled reviews inside AWS Lambda. EventBridge schedules
// invoke it with {"action":"monthly"}, {"action":"weekly"} or
// {"action":"analyze"}.
package main

import (
	"context"
	"fmt"
	"os"
	"sync"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	aiolambda "github.com/danhoward/aio-engine/internal/lambda"
)

var (
	deps     *aiolambda.Deps
	depsOnce sync.Once
	depsErr  error
)

func getDeps() (*aiolambda.Deps, error) {
	depsOnce.Do(func() {
		deps, depsErr = aiolambda.Init(context.Background())
	})
	return deps, depsErr
}

func handle(ctx context.Context, req aiolambda.RunRequest) (aiolambda.RunResponse, error) {
	d, err := getDeps()
	if err != nil {
		return aiolambda.RunResponse{}, fmt.Errorf("initializing dependencies: %w", err)
	}
	if err := d.Store.Start(ctx); err != nil {
		return aiolambda.RunResponse{}, fmt.Errorf("connecting to store: %w", err)
	}
	return d.HandleRun(ctx, req)
}

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") == "" {
		fmt.Fprintln(os.Stderr, "aio-lambda must run inside AWS Lambda")
		os.Exit(1)
	}
	awslambda.Start(handle)
}
