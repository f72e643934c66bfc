// Package services implements the application core: text chunking,
// embedding generation and persistence, bounded chat history, topic
// classification, and the conversation orchestrator that combines
// them into retrieval-augmented chat requests.
package services
