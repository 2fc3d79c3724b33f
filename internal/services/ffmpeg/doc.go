// Package ffmpeg re-encodes downloaded video into the container and codecs
// the remote platform accepts. Transcodes are serialized process-wide.
package ffmpeg
