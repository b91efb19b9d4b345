// Package objectstore uploads staged media to S3-compatible storage at
// deterministic keys, so re-uploading the same photo overwrites the same
// object instead of creating a duplicate.
package objectstore
