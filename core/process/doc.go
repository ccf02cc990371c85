// Package process resolves and spawns the streaming server process.
//
// It owns two concerns:
//
//   - ServerConfig: the validated set of absolute paths to the bundled runtime, ffmpeg, ffprobe and
//     server.js. A ServerConfig can only be built by ConfigAtDir, which verifies that every file exists.
//   - Launcher: builds the command line (runtime as the executable, server.js as its only argument,
//     helper paths in FFMPEG_BIN/FFPROBE_BIN) and spawns it with stdout captured through a pipe.
//
// The launcher never retries. Retry policy belongs to the caller.
//
// # Platform behaviour
//
// On Windows the process is created without a console window. On Unix systems the server gets its own
// process group so that Kill terminates the runtime together with anything it spawned.
//
// # Usage
//
//	cfg, err := process.ConfigAtDir("/opt/stremio-service", process.Features{})
//	proc, err := process.NewLauncher(logger).Launch(cfg)
//	go endpoint.Watch(proc.Stdout(), cell, logger)
package process
