// Command slotstore-stream logs record-level changes from the slots table's
// DynamoDB stream.
package main

import (
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/jacentio/slotstore/stream"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	h := stream.NewHandler(stream.LogSink(logger), logger)
	lambda.Start(h.HandleChanges)
}
