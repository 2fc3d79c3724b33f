// Package ytdlp downloads source media into private staging directories
// using the yt-dlp command-line tool.
package ytdlp
