package models

import (
	"time"
)

// SceneID задаёт имя активного мастера.
type SceneID string

const (
	SceneCreateFolder  SceneID = "create_folder"
	SceneOpenFolder    SceneID = "open_folder"
	SceneSearchFolders SceneID = "search_folders"
	SceneAddFiles      SceneID = "add_files"
	ScenePasswordGate  SceneID = "password_gate"
	SceneDownloadVideo SceneID = "download_video"
)

// SceneState: закрытое объединение черновиков сцен. Реализации есть только
// в этом пакете, у каждой свой тип шага.
type SceneState interface {
	Scene() SceneID
	sealed()
}

type CreateFolderStep int

const (
	CreateStepName CreateFolderStep = iota
	CreateStepFiles
	CreateStepDescription
	CreateStepTags
	CreateStepAskPassword
	CreateStepSetPassword
	CreateStepCover
)

type CreateFolderState struct {
	Step         CreateFolderStep
	Name         string
	Items        []Attachment
	Description  string
	Tags         string
	PasswordHash string
	Cover        *FileRef
}

func (*CreateFolderState) Scene() SceneID { return SceneCreateFolder }
func (*CreateFolderState) sealed()        {}

// OpenFolderState ждёт имя папки, шаг один.
type OpenFolderState struct{}

func (*OpenFolderState) Scene() SceneID { return SceneOpenFolder }
func (*OpenFolderState) sealed()        {}

// SearchFoldersState ждёт поисковый запрос, шаг один.
type SearchFoldersState struct{}

func (*SearchFoldersState) Scene() SceneID { return SceneSearchFolders }
func (*SearchFoldersState) sealed()        {}

type AddFilesStep int

const (
	AddStepFolder AddFilesStep = iota
	AddStepFiles
)

type AddFilesState struct {
	Step     AddFilesStep
	FolderID uint
	Items    []Attachment
}

func (*AddFilesState) Scene() SceneID { return SceneAddFiles }
func (*AddFilesState) sealed()        {}

// GateAction: действие, которое выполнится после верного пароля.
type GateAction int

const (
	GateOpen GateAction = iota
	GateDelete
)

type PasswordGateState struct {
	Action   GateAction
	FolderID uint
}

func (*PasswordGateState) Scene() SceneID { return ScenePasswordGate }
func (*PasswordGateState) sealed()        {}

type DownloadStep int

const (
	DownloadStepURL DownloadStep = iota
	DownloadStepQuality
	DownloadStepChooseAction
)

type DownloadState struct {
	Step     DownloadStep
	URL      string
	FilePath string
	FolderID uint
}

func (*DownloadState) Scene() SceneID { return SceneDownloadVideo }
func (*DownloadState) sealed()        {}

// Session хранит состояние чата, пока активна сцена.
type Session struct {
	State     SceneState
	UpdatedAt time.Time
}
