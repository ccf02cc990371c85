// Package binwatch restarts the streaming server after its binaries were replaced on disk.
//
// The binaries directory is watched with fsnotify. Write, create and rename events for the
// runtime, ffmpeg, ffprobe or server.js are grouped by a debounce window; when the window
// closes and the server is running, it is restarted so the new files are picked up.
//
// The watcher is only started when server.restart_on_change is enabled.
package binwatch
