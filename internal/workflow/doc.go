// Package workflow drives queue items through the probe, analyze, and tag
// stages. The manager polls the queue for ready items, moves them into the
// matching processing status, and persists the stage outcome.
package workflow
