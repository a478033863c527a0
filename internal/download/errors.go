package download

import (
	"errors"
	"fmt"
)

// ErrDownloadFailed matches every *FetchError through errors.Is
var ErrDownloadFailed = errors.New("download failed")

// Stage names the step of a fetch that failed
type Stage string

const (
	StageParse    Stage = "parse"
	StageMetadata Stage = "metadata"
	StageList     Stage = "list"
	StageSelect   Stage = "select"
	StageFetch    Stage = "fetch"
	StageExtract  Stage = "extract"
	StageLocate   Stage = "locate"
	StageValidate Stage = "validate"
)

// FetchError reports a failed download
type FetchError struct {
	Site  Site
	Stage Stage
	URL   string
	Err   error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("%s download failed at %s stage for %s: %v", e.Site, e.Stage, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match ErrDownloadFailed
func (e *FetchError) Is(target error) bool {
	return target == ErrDownloadFailed
}

func fetchError(site Site, stage Stage, url string, err error) *FetchError {
	return &FetchError{Site: site, Stage: stage, URL: url, Err: err}
}
