// Package audio plays the feedback cues entries request when they are
// displayed. It uses the beep library to play WAV, OGG and MP3 files with
// volume control and one configured sound per feedback kind.
package audio
