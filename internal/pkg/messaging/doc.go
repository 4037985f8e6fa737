// Package messaging publishes domain events to a broker.
//
// Business code depends on Publisher only, so the broker (Kafka, NATS, NSQ or
// Google Pub/Sub) is chosen by configuration. An empty driver yields Noop.
package messaging
