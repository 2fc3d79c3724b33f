// Package workflow drives the publishing pipeline: it picks the oldest
// pending item per account, acquires media, normalizes video, stages the file
// publicly, and publishes it through the remote platform client. Accounts are
// processed concurrently but each account's pipeline runs strictly one at a
// time, in arrival order.
package workflow
