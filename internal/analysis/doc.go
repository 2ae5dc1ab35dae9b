// Package analysis holds post-processing of concentration fields.
package analysis
