package playback

type Event int

const (
	// EventTrackChanged fires when a new song becomes current, before it starts.
	EventTrackChanged Event = iota
	EventPlaying
	EventPaused
	EventPlaybackFailed
	EventResumeFailed
	EventTrackEnded
	EventSeeked
	EventShuffleChanged
	EventRepeatChanged
	EventFavoriteChanged
	EventVolumeChanged
	EventMuteChanged
)

func (e Event) String() string {
	switch e {
	case EventTrackChanged:
		return "track-changed"
	case EventPlaying:
		return "playing"
	case EventPaused:
		return "paused"
	case EventPlaybackFailed:
		return "playback-failed"
	case EventResumeFailed:
		return "resume-failed"
	case EventTrackEnded:
		return "track-ended"
	case EventSeeked:
		return "seeked"
	case EventShuffleChanged:
		return "shuffle-changed"
	case EventRepeatChanged:
		return "repeat-changed"
	case EventFavoriteChanged:
		return "favorite-changed"
	case EventVolumeChanged:
		return "volume-changed"
	case EventMuteChanged:
		return "mute-changed"
	}
	return "unknown"
}

type EventData struct {
	Type       Event
	SongID     string
	Generation uint64
	Err        error
	// Flag carries the new value for shuffle, repeat, mute and favorite events.
	Flag   bool
	Volume float64
}
