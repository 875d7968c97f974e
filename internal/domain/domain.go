package domain

import (
	"github.com/yungbote/pulsefeed-backend/internal/domain/catalog"
	"github.com/yungbote/pulsefeed-backend/internal/domain/discovery"
)

const (
	ClassVideo = discovery.ClassVideo
	ClassVoice = discovery.ClassVoice
	ClassPhoto = discovery.ClassPhoto
	ClassText  = discovery.ClassText

	KindView    = discovery.KindView
	KindLike    = discovery.KindLike
	KindSave    = discovery.KindSave
	KindShare   = discovery.KindShare
	KindComment = discovery.KindComment
	KindSkip    = discovery.KindSkip
	KindRewatch = discovery.KindRewatch

	SeenItemContent = discovery.SeenItemContent
	SeenItemProfile = discovery.SeenItemProfile

	VisibilityPublic  = catalog.VisibilityPublic
	VisibilityPrivate = catalog.VisibilityPrivate
)

type (
	ContentClass    = discovery.ContentClass
	InteractionKind = discovery.InteractionKind
	SeenItemType    = discovery.SeenItemType

	InteractionEvent = discovery.InteractionEvent
	InterestProfile  = discovery.InterestProfile
	CreatorAffinity  = discovery.CreatorAffinity
	ContentFatigue   = discovery.ContentFatigue
	ContentVelocity  = discovery.ContentVelocity
	SeenRecord       = discovery.SeenRecord

	Content = catalog.Content
	User    = catalog.User
	Follow  = catalog.Follow
)
