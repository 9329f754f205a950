// Package postgres backs the Store with GORM over PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/jsflux/encore/internal/domain"
	"github.com/jsflux/encore/internal/store"
)

type Postgres struct {
	db *gorm.DB
}

func Open(dsn string) (*Postgres, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.AutoMigrate(
		&appUserRow{}, &roomRow{}, &trackRow{}, &roomMemberRow{},
		&queueItemRow{}, &playbackStateRow{}, &chatMessageRow{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Postgres{db: db}, nil
}

func (p *Postgres) Users() store.UserStore        { return &users{p.db} }
func (p *Postgres) Rooms() store.RoomStore        { return &rooms{p.db} }
func (p *Postgres) Tracks() store.TrackStore      { return &tracks{p.db} }
func (p *Postgres) Members() store.MemberStore    { return &members{p.db} }
func (p *Postgres) Queue() store.QueueStore       { return &queueItems{p.db} }
func (p *Postgres) Playback() store.PlaybackStore { return &playback{p.db} }
func (p *Postgres) Chat() store.ChatStore         { return &chat{p.db} }

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, domain.ErrNotFound)
	}
	return err
}

type appUserRow struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	Email     string    `gorm:"size:255;uniqueIndex"`
	Password  string    `gorm:"size:255"`
	Nickname  string    `gorm:"size:36"`
	Provider  string    `gorm:"size:20"`
	CreatedAt time.Time
}

func (appUserRow) TableName() string { return "app_user" }

func (r appUserRow) toDomain() *domain.AppUser {
	return &domain.AppUser{
		ID:        domain.UserID(r.ID),
		Email:     r.Email,
		Password:  r.Password,
		Nickname:  r.Nickname,
		Provider:  r.Provider,
		CreatedAt: r.CreatedAt,
	}
}

type users struct{ db *gorm.DB }

func (s *users) Create(ctx context.Context, u *domain.AppUser) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&appUserRow{}).Where("email = ?", u.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("email %q: %w", u.Email, domain.ErrConflict)
	}
	row := appUserRow{
		Email:     u.Email,
		Password:  u.Password,
		Nickname:  u.Nickname,
		Provider:  u.Provider,
		CreatedAt: u.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	u.ID = domain.UserID(row.ID)
	return nil
}

func (s *users) ByID(ctx context.Context, id domain.UserID) (*domain.AppUser, error) {
	var row appUserRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return row.toDomain(), nil
}

func (s *users) ByEmail(ctx context.Context, email string) (*domain.AppUser, error) {
	var row appUserRow
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&row).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return row.toDomain(), nil
}

type roomRow struct {
	ID           int64  `gorm:"primaryKey;autoIncrement"`
	Title        string `gorm:"size:200"`
	Mode         string `gorm:"size:20"`
	Visibility   string `gorm:"size:20"`
	PasswordHash string `gorm:"size:255"`
	HostID       int64
	CreatedAt    time.Time
}

func (roomRow) TableName() string { return "room" }

func (r roomRow) toDomain() domain.Room {
	return domain.Room{
		ID:           domain.RoomID(r.ID),
		Title:        r.Title,
		Mode:         domain.RoomMode(r.Mode),
		Visibility:   domain.RoomVisibility(r.Visibility),
		PasswordHash: r.PasswordHash,
		HostID:       domain.UserID(r.HostID),
		CreatedAt:    r.CreatedAt,
	}
}

type rooms struct{ db *gorm.DB }

func (s *rooms) Create(ctx context.Context, r *domain.Room) error {
	row := roomRow{
		Title:        r.Title,
		Mode:         string(r.Mode),
		Visibility:   string(r.Visibility),
		PasswordHash: r.PasswordHash,
		HostID:       int64(r.HostID),
		CreatedAt:    r.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	r.ID = domain.RoomID(row.ID)
	return nil
}

func (s *rooms) ByID(ctx context.Context, id domain.RoomID) (*domain.Room, error) {
	var row roomRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		return nil, notFound(err, "room")
	}
	out := row.toDomain()
	return &out, nil
}

func (s *rooms) All(ctx context.Context) ([]domain.Room, error) {
	var rows []roomRow
	if err := s.db.WithContext(ctx).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Room, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

type trackRow struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	SourceType      string `gorm:"size:20"`
	Title           string `gorm:"size:200"`
	Artist          string `gorm:"size:200"`
	DurationSeconds int
	URL             string `gorm:"size:500"`
	MetadataJSON    string
}

func (trackRow) TableName() string { return "track" }

func (r trackRow) toDomain() domain.Track {
	return domain.Track{
		ID:              domain.TrackID(r.ID),
		SourceType:      domain.TrackSourceType(r.SourceType),
		Title:           r.Title,
		Artist:          r.Artist,
		DurationSeconds: r.DurationSeconds,
		URL:             r.URL,
		MetadataJSON:    r.MetadataJSON,
	}
}

type tracks struct{ db *gorm.DB }

func (s *tracks) Create(ctx context.Context, t *domain.Track) error {
	row := trackRow{
		SourceType:      string(t.SourceType),
		Title:           t.Title,
		Artist:          t.Artist,
		DurationSeconds: t.DurationSeconds,
		URL:             t.URL,
		MetadataJSON:    t.MetadataJSON,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	t.ID = domain.TrackID(row.ID)
	return nil
}

func (s *tracks) ByID(ctx context.Context, id domain.TrackID) (*domain.Track, error) {
	var row trackRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		return nil, notFound(err, "track")
	}
	out := row.toDomain()
	return &out, nil
}

func (s *tracks) Search(ctx context.Context, query string) ([]domain.Track, error) {
	var rows []trackRow
	pattern := "%" + query + "%"
	if err := s.db.WithContext(ctx).
		Where("title ILIKE ? OR artist ILIKE ?", pattern, pattern).
		Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Track, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

type roomMemberRow struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	RoomID     int64  `gorm:"uniqueIndex:uk_room_member_room_user"`
	UserID     int64  `gorm:"uniqueIndex:uk_room_member_room_user"`
	Role       string `gorm:"size:20"`
	Muted      bool
	DeviceInfo string `gorm:"size:500"`
	JoinedAt   time.Time
}

func (roomMemberRow) TableName() string { return "room_member" }

func (r roomMemberRow) toDomain() domain.RoomMember {
	return domain.RoomMember{
		ID:         r.ID,
		RoomID:     domain.RoomID(r.RoomID),
		UserID:     domain.UserID(r.UserID),
		Role:       domain.RoomRole(r.Role),
		Muted:      r.Muted,
		DeviceInfo: r.DeviceInfo,
		JoinedAt:   r.JoinedAt,
	}
}

type members struct{ db *gorm.DB }

func (s *members) Create(ctx context.Context, m *domain.RoomMember) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&roomMemberRow{}).
		Where("room_id = ? AND user_id = ?", int64(m.RoomID), int64(m.UserID)).
		Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("member room=%d user=%d: %w", m.RoomID, m.UserID, domain.ErrConflict)
	}
	row := roomMemberRow{
		RoomID:     int64(m.RoomID),
		UserID:     int64(m.UserID),
		Role:       string(m.Role),
		Muted:      m.Muted,
		DeviceInfo: m.DeviceInfo,
		JoinedAt:   m.JoinedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	m.ID = row.ID
	return nil
}

func (s *members) ByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.RoomMember, error) {
	var rows []roomMemberRow
	if err := s.db.WithContext(ctx).Where("room_id = ?", int64(roomID)).Order("id asc").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.RoomMember, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *members) ByRoomAndUser(ctx context.Context, roomID domain.RoomID, userID domain.UserID) (*domain.RoomMember, error) {
	var row roomMemberRow
	if err := s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", int64(roomID), int64(userID)).
		First(&row).Error; err != nil {
		return nil, notFound(err, "member")
	}
	out := row.toDomain()
	return &out, nil
}

func (s *members) DeleteByRoomAndUser(ctx context.Context, roomID domain.RoomID, userID domain.UserID) error {
	return s.db.WithContext(ctx).
		Where("room_id = ? AND user_id = ?", int64(roomID), int64(userID)).
		Delete(&roomMemberRow{}).Error
}

func (s *members) CountByRoom(ctx context.Context, roomID domain.RoomID) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&roomMemberRow{}).Where("room_id = ?", int64(roomID)).Count(&count).Error
	return count, err
}

type queueItemRow struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	RoomID      int64 `gorm:"index"`
	TrackID     int64
	RequestedBy int64
	Status      string `gorm:"size:20"`
	SortOrder   int
	CreatedAt   time.Time
}

func (queueItemRow) TableName() string { return "queue_item" }

func (r queueItemRow) toDomain() domain.QueueItem {
	return domain.QueueItem{
		ID:          domain.QueueItemID(r.ID),
		RoomID:      domain.RoomID(r.RoomID),
		TrackID:     domain.TrackID(r.TrackID),
		RequestedBy: domain.UserID(r.RequestedBy),
		Status:      domain.QueueStatus(r.Status),
		SortOrder:   r.SortOrder,
		CreatedAt:   r.CreatedAt,
	}
}

type queueItems struct{ db *gorm.DB }

func (s *queueItems) Create(ctx context.Context, item *domain.QueueItem) error {
	row := queueItemRow{
		RoomID:      int64(item.RoomID),
		TrackID:     int64(item.TrackID),
		RequestedBy: int64(item.RequestedBy),
		Status:      string(item.Status),
		SortOrder:   item.SortOrder,
		CreatedAt:   item.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return err
	}
	item.ID = domain.QueueItemID(row.ID)
	return nil
}

func (s *queueItems) ByID(ctx context.Context, id domain.QueueItemID) (*domain.QueueItem, error) {
	var row queueItemRow
	if err := s.db.WithContext(ctx).First(&row, int64(id)).Error; err != nil {
		return nil, notFound(err, "queue item")
	}
	out := row.toDomain()
	return &out, nil
}

func (s *queueItems) ByRoom(ctx context.Context, roomID domain.RoomID) ([]domain.QueueItem, error) {
	var rows []queueItemRow
	if err := s.db.WithContext(ctx).
		Where("room_id = ?", int64(roomID)).
		Order("sort_order asc, created_at asc").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.QueueItem, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

func (s *queueItems) Save(ctx context.Context, item *domain.QueueItem) error {
	res := s.db.WithContext(ctx).Model(&queueItemRow{}).
		Where("id = ?", int64(item.ID)).
		Updates(map[string]any{
			"status":     string(item.Status),
			"sort_order": item.SortOrder,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("queue item %d: %w", item.ID, domain.ErrNotFound)
	}
	return nil
}

type playbackStateRow struct {
	RoomID     int64 `gorm:"primaryKey"`
	TrackID    *int64
	PositionMs int64
	Playing    bool
	UpdatedAt  time.Time
}

func (playbackStateRow) TableName() string { return "playback_state" }

type playback struct{ db *gorm.DB }

func (s *playback) ByRoom(ctx context.Context, roomID domain.RoomID) (*domain.PlaybackState, error) {
	var row playbackStateRow
	if err := s.db.WithContext(ctx).First(&row, "room_id = ?", int64(roomID)).Error; err != nil {
		return nil, notFound(err, "playback")
	}
	out := domain.PlaybackState{
		RoomID:     domain.RoomID(row.RoomID),
		PositionMs: row.PositionMs,
		Playing:    row.Playing,
		UpdatedAt:  row.UpdatedAt,
	}
	if row.TrackID != nil {
		id := domain.TrackID(*row.TrackID)
		out.TrackID = &id
	}
	return &out, nil
}

func (s *playback) Save(ctx context.Context, st *domain.PlaybackState) error {
	row := playbackStateRow{
		RoomID:     int64(st.RoomID),
		PositionMs: st.PositionMs,
		Playing:    st.Playing,
		UpdatedAt:  st.UpdatedAt,
	}
	if st.TrackID != nil {
		id := int64(*st.TrackID)
		row.TrackID = &id
	}
	return s.db.WithContext(ctx).Save(&row).Error
}

type chatMessageRow struct {
	ID       string `gorm:"primaryKey;size:36"`
	RoomID   int64  `gorm:"index"`
	UserID   int64
	Nickname string `gorm:"size:36"`
	Content  string `gorm:"size:2000"`
	SentAt   time.Time
}

func (chatMessageRow) TableName() string { return "chat_message" }

type chat struct{ db *gorm.DB }

func (s *chat) Append(ctx context.Context, msg *domain.ChatMessage) error {
	row := chatMessageRow{
		ID:       msg.ID,
		RoomID:   int64(msg.RoomID),
		UserID:   int64(msg.UserID),
		Nickname: msg.Nickname,
		Content:  msg.Content,
		SentAt:   msg.SentAt,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

func (s *chat) ByRoom(ctx context.Context, roomID domain.RoomID, limit int) ([]domain.ChatMessage, error) {
	var rows []chatMessageRow
	q := s.db.WithContext(ctx).Where("room_id = ?", int64(roomID)).Order("sent_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ChatMessage, 0, len(rows))
	for i := len(rows) - 1; i >= 0; i-- {
		r := rows[i]
		out = append(out, domain.ChatMessage{
			ID:       r.ID,
			RoomID:   domain.RoomID(r.RoomID),
			UserID:   domain.UserID(r.UserID),
			Nickname: r.Nickname,
			Content:  r.Content,
			SentAt:   r.SentAt,
		})
	}
	return out, nil
}
