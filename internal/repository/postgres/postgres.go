package postgres

import (
	"github.com/jmoiron/sqlx"

	"github.com/workstream/comms-api/internal/repository"
)

type messageRepository struct {
	db *sqlx.DB
}

type channelRepository struct {
	db *sqlx.DB
}

type announcementRepository struct {
	db *sqlx.DB
}

type recognitionRepository struct {
	db *sqlx.DB
}

type swapRepository struct {
	db *sqlx.DB
}

type notificationRepository struct {
	db *sqlx.DB
}

type outboxRepository struct {
	db *sqlx.DB
}

type employeeDirectory struct {
	db *sqlx.DB
}

func NewMessageRepository(db *sqlx.DB) repository.MessageRepository {
	return &messageRepository{db: db}
}

func NewChannelRepository(db *sqlx.DB) repository.ChannelRepository {
	return &channelRepository{db: db}
}

func NewAnnouncementRepository(db *sqlx.DB) repository.AnnouncementRepository {
	return &announcementRepository{db: db}
}

func NewRecognitionRepository(db *sqlx.DB) repository.RecognitionRepository {
	return &recognitionRepository{db: db}
}

func NewSwapRepository(db *sqlx.DB) repository.SwapRepository {
	return &swapRepository{db: db}
}

func NewNotificationRepository(db *sqlx.DB) repository.NotificationRepository {
	return &notificationRepository{db: db}
}

func NewOutboxRepository(db *sqlx.DB) repository.OutboxRepository {
	return &outboxRepository{db: db}
}

func NewEmployeeDirectory(db *sqlx.DB) repository.EmployeeDirectory {
	return &employeeDirectory{db: db}
}
