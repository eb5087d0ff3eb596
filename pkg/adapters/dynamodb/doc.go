// Package dynamodb persists conversations in an Amazon DynamoDB table.
package dynamodb
