// Package observability records what happens to the todo list and reports on
// it. Mutations are appended to a JSON Lines event log, metrics are derived
// from that log on demand, and alerts are evaluated against the live list and
// delivered to Slack or the desktop.
package observability
