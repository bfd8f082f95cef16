package casdoor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"

	"github.com/UniFest-2025/event-service/internal/models"
	"github.com/UniFest-2025/event-service/internal/repositories"
)

// CasdoorConfig holds the configuration for the Casdoor connection
type CasdoorConfig struct {
	Endpoint         string
	ClientID         string
	ClientSecret     string
	Certificate      string
	OrganizationName string
	ApplicationName  string
}

type UserCasdoor struct {
	client *casdoorsdk.Client
	redis  *redis.Client
	config CasdoorConfig

	// Cache settings
	cachePrefix string
	cacheTTL    time.Duration
}

func NewUserCasdoor(config CasdoorConfig, redisClient *redis.Client) repositories.UserRepository {
	client := casdoorsdk.NewClient(
		config.Endpoint,
		config.ClientID,
		config.ClientSecret,
		config.Certificate,
		config.OrganizationName,
		config.ApplicationName,
	)

	return &UserCasdoor{
		client:      client,
		redis:       redisClient,
		config:      config,
		cachePrefix: "user:",
		cacheTTL:    15 * time.Minute,
	}
}

// ===== CACHE METHODS =====

func (u *UserCasdoor) getCacheKey(key string) string {
	return fmt.Sprintf("%s%s", u.cachePrefix, key)
}

func (u *UserCasdoor) getUserFromCache(ctx context.Context, key string) (*models.User, error) {
	if u.redis == nil {
		return nil, nil
	}

	data, err := u.redis.Get(ctx, u.getCacheKey(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get from cache: %w", err)
	}

	var user models.User
	if err := json.Unmarshal([]byte(data), &user); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached user: %w", err)
	}

	return &user, nil
}

func (u *UserCasdoor) setUserCache(ctx context.Context, key string, user *models.User) error {
	if u.redis == nil {
		return nil
	}

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("failed to marshal user for cache: %w", err)
	}

	return u.redis.Set(ctx, u.getCacheKey(key), data, u.cacheTTL).Err()
}

func (u *UserCasdoor) dropUserCache(ctx context.Context, user *models.User) {
	if u.redis == nil || user == nil {
		return
	}

	u.redis.Del(ctx,
		u.getCacheKey(fmt.Sprintf("id:%s", user.ID)),
		u.getCacheKey(fmt.Sprintf("email:%s", user.Email)))
}

// ===== CONVERSION METHODS =====

// Property keys for the domain fields Casdoor has no native column for
const (
	propInstitution  = "institution_type"
	propInterests    = "interests"
	propFollowing    = "followed_organizers"
	propOrgName      = "org_name"
	propOrgCategory  = "org_category"
	propContactEmail = "contact_email"
	propWebhookURL   = "webhook_url"
)

func (u *UserCasdoor) convertCasdoorUserToModel(casdoorUser *casdoorsdk.User) *models.User {
	if casdoorUser == nil {
		return nil
	}

	var createdAt, updatedAt time.Time
	if casdoorUser.CreatedTime != "" {
		createdAt, _ = time.Parse(time.RFC3339, casdoorUser.CreatedTime)
	}
	if casdoorUser.UpdatedTime != "" {
		updatedAt, _ = time.Parse(time.RFC3339, casdoorUser.UpdatedTime)
	}

	user := &models.User{
		ID:         casdoorUser.Id,
		FullName:   casdoorUser.DisplayName,
		Email:      casdoorUser.Email,
		Role:       u.convertCasdoorRolesToModel(casdoorUser),
		IsDisabled: casdoorUser.IsForbidden,
		IsArchived: casdoorUser.IsDeleted,
		CreatedAt:  createdAt,
		UpdatedAt:  updatedAt,
	}

	props := casdoorUser.Properties
	user.InstitutionType = models.InstitutionOther
	if institution := props[propInstitution]; strings.EqualFold(institution, string(models.InstitutionIIIT)) {
		user.InstitutionType = models.InstitutionIIIT
	}
	if interests := props[propInterests]; interests != "" {
		user.Interests = datatypes.JSON(interests)
	}
	if following := props[propFollowing]; following != "" {
		user.FollowedOrganizers = datatypes.JSON(following)
	}
	if orgName := props[propOrgName]; orgName != "" {
		user.OrgName = &orgName
	}
	if orgCategory := props[propOrgCategory]; orgCategory != "" {
		user.OrgCategory = &orgCategory
	}
	if contactEmail := props[propContactEmail]; contactEmail != "" {
		user.ContactEmail = &contactEmail
	}
	if webhookURL := props[propWebhookURL]; webhookURL != "" {
		user.WebhookURL = &webhookURL
	}

	return user
}

func (u *UserCasdoor) convertModelToCasdoorUser(user *models.User) *casdoorsdk.User {
	properties := map[string]string{
		propInstitution: string(user.InstitutionType),
	}
	if len(user.Interests) > 0 {
		properties[propInterests] = string(user.Interests)
	}
	if len(user.FollowedOrganizers) > 0 {
		properties[propFollowing] = string(user.FollowedOrganizers)
	}
	if user.OrgName != nil {
		properties[propOrgName] = *user.OrgName
	}
	if user.OrgCategory != nil {
		properties[propOrgCategory] = *user.OrgCategory
	}
	if user.ContactEmail != nil {
		properties[propContactEmail] = *user.ContactEmail
	}
	if user.WebhookURL != nil {
		properties[propWebhookURL] = *user.WebhookURL
	}

	return &casdoorsdk.User{
		Owner:       u.config.OrganizationName,
		Name:        userNameFromEmail(user.Email),
		Id:          user.ID,
		DisplayName: user.FullName,
		Email:       user.Email,
		Tag:         string(user.Role),
		IsForbidden: user.IsDisabled,
		IsDeleted:   user.IsArchived,
		Properties:  properties,
	}
}

func (u *UserCasdoor) convertCasdoorRolesToModel(casdoorUser *casdoorsdk.User) models.UserRole {
	if casdoorUser.IsAdmin {
		return models.RoleAdmin
	}

	for _, casdoorRole := range casdoorUser.Roles {
		if mapped, ok := mapSingleCasdoorRole(casdoorRole.Name); ok {
			return mapped
		}
	}

	// Accounts created by this service carry the role in the tag
	if mapped, ok := mapSingleCasdoorRole(casdoorUser.Tag); ok {
		return mapped
	}

	return models.RoleParticipant
}

func mapSingleCasdoorRole(name string) (models.UserRole, bool) {
	switch strings.ToLower(name) {
	case "participant", "student":
		return models.RoleParticipant, true
	case "organizer", "club":
		return models.RoleOrganizer, true
	case "admin", "administrator":
		return models.RoleAdmin, true
	default:
		return "", false
	}
}

// userNameFromEmail derives the Casdoor account name from the local part of
// the email address.
func userNameFromEmail(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}

// ===== READ OPERATIONS =====

func (u *UserCasdoor) GetByID(ctx context.Context, id string) (*models.User, error) {
	cacheKey := fmt.Sprintf("id:%s", id)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return nil, fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user not found with ID %s", id)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)

	u.setUserCache(ctx, cacheKey, user)
	u.setUserCache(ctx, fmt.Sprintf("email:%s", user.Email), user)

	return user, nil
}

func (u *UserCasdoor) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	cacheKey := fmt.Sprintf("email:%s", email)
	if cachedUser, err := u.getUserFromCache(ctx, cacheKey); err == nil && cachedUser != nil {
		return cachedUser, nil
	}

	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return nil, fmt.Errorf("user not found with email %s", email)
	}

	user := u.convertCasdoorUserToModel(casdoorUser)

	u.setUserCache(ctx, cacheKey, user)
	u.setUserCache(ctx, fmt.Sprintf("id:%s", user.ID), user)

	return user, nil
}

func (u *UserCasdoor) GetByIDs(ctx context.Context, ids []string) ([]*models.User, error) {
	if len(ids) == 0 {
		return []*models.User{}, nil
	}

	users := make([]*models.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.GetByID(ctx, id)
		if err != nil {
			// Skip unknown ids, the caller joins against what exists
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

func (u *UserCasdoor) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, int64, error) {
	casdoorUsers, err := u.client.GetUsers()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users from Casdoor: %w", err)
	}

	matched := make([]*models.User, 0, len(casdoorUsers))
	for _, casdoorUser := range casdoorUsers {
		user := u.convertCasdoorUserToModel(casdoorUser)
		if user == nil {
			continue
		}
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.Query != "" {
			query := strings.ToLower(filters.Query)
			if !strings.Contains(strings.ToLower(user.FullName), query) &&
				!strings.Contains(strings.ToLower(user.Email), query) {
				continue
			}
		}
		matched = append(matched, user)
	}

	total := int64(len(matched))

	if filters.Offset > 0 {
		if filters.Offset >= len(matched) {
			return []*models.User{}, total, nil
		}
		matched = matched[filters.Offset:]
	}
	if filters.Limit > 0 && filters.Limit < len(matched) {
		matched = matched[:filters.Limit]
	}

	return matched, total, nil
}

// ===== ACCOUNT ADMINISTRATION =====

func (u *UserCasdoor) Create(ctx context.Context, user *models.User, password string) error {
	casdoorUser := u.convertModelToCasdoorUser(user)
	casdoorUser.Password = password

	ok, err := u.client.AddUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to create user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected user creation for %s", user.Email)
	}

	// Read the assigned id back
	created, err := u.client.GetUserByEmail(user.Email)
	if err != nil || created == nil {
		return fmt.Errorf("failed to read back created user: %w", err)
	}
	user.ID = created.Id

	return nil
}

func (u *UserCasdoor) Update(ctx context.Context, user *models.User) error {
	existing, err := u.client.GetUserByUserId(user.ID)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if existing == nil {
		return fmt.Errorf("user not found with ID %s", user.ID)
	}

	updated := u.convertModelToCasdoorUser(user)
	updated.Name = existing.Name
	updated.CreatedTime = existing.CreatedTime

	ok, err := u.client.UpdateUser(updated)
	if err != nil {
		return fmt.Errorf("failed to update user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected user update for %s", user.ID)
	}

	u.dropUserCache(ctx, user)
	return nil
}

func (u *UserCasdoor) SetDisabled(ctx context.Context, id string, disabled bool) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("user not found with ID %s", id)
	}

	casdoorUser.IsForbidden = disabled

	ok, err := u.client.UpdateUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to update user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected disable toggle for %s", id)
	}

	u.dropUserCache(ctx, u.convertCasdoorUserToModel(casdoorUser))
	return nil
}

func (u *UserCasdoor) SetArchived(ctx context.Context, id string, archived bool) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("user not found with ID %s", id)
	}

	casdoorUser.IsDeleted = archived

	ok, err := u.client.UpdateUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to update user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected archive toggle for %s", id)
	}

	u.dropUserCache(ctx, u.convertCasdoorUserToModel(casdoorUser))
	return nil
}

// RemoveFollowedOrganizer prunes the organizer id from every participant's
// followed list. Called from the organizer cascade delete.
func (u *UserCasdoor) RemoveFollowedOrganizer(ctx context.Context, organizerID string) error {
	casdoorUsers, err := u.client.GetUsers()
	if err != nil {
		return fmt.Errorf("failed to list users from Casdoor: %w", err)
	}

	for _, casdoorUser := range casdoorUsers {
		following := casdoorUser.Properties[propFollowing]
		if following == "" || !strings.Contains(following, organizerID) {
			continue
		}

		var ids []string
		if err := json.Unmarshal([]byte(following), &ids); err != nil {
			continue
		}

		pruned := ids[:0]
		for _, id := range ids {
			if id != organizerID {
				pruned = append(pruned, id)
			}
		}
		if len(pruned) == len(ids) {
			continue
		}

		data, err := json.Marshal(pruned)
		if err != nil {
			return fmt.Errorf("failed to encode followed organizers: %w", err)
		}
		casdoorUser.Properties[propFollowing] = string(data)

		if ok, err := u.client.UpdateUser(casdoorUser); err != nil || !ok {
			return fmt.Errorf("failed to prune follower list for %s: %w", casdoorUser.Id, err)
		}

		u.dropUserCache(ctx, u.convertCasdoorUserToModel(casdoorUser))
	}

	return nil
}

func (u *UserCasdoor) SetPassword(ctx context.Context, id string, newPassword string) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("user not found with ID %s", id)
	}

	// Admin credential reset, no old password required
	ok, err := u.client.SetPassword(casdoorUser.Owner, casdoorUser.Name, "", newPassword)
	if err != nil {
		return fmt.Errorf("failed to set password in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected password change for %s", id)
	}

	return nil
}

func (u *UserCasdoor) Delete(ctx context.Context, id string) error {
	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return fmt.Errorf("failed to get user from Casdoor: %w", err)
	}
	if casdoorUser == nil {
		return fmt.Errorf("user not found with ID %s", id)
	}

	ok, err := u.client.DeleteUser(casdoorUser)
	if err != nil {
		return fmt.Errorf("failed to delete user in Casdoor: %w", err)
	}
	if !ok {
		return fmt.Errorf("Casdoor rejected user deletion for %s", id)
	}

	u.dropUserCache(ctx, u.convertCasdoorUserToModel(casdoorUser))
	return nil
}

// ===== VALIDATION AND CHECKS =====

func (u *UserCasdoor) ExistsByID(ctx context.Context, id string) (bool, error) {
	cacheKey := u.getCacheKey(fmt.Sprintf("exists:id:%s", id))
	if u.redis != nil {
		exists, err := u.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			return exists == "true", nil
		}
	}

	casdoorUser, err := u.client.GetUserByUserId(id)
	if err != nil {
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	exists := casdoorUser != nil

	if u.redis != nil {
		u.redis.Set(ctx, cacheKey, fmt.Sprintf("%t", exists), 1*time.Minute)
	}

	return exists, nil
}

func (u *UserCasdoor) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	casdoorUser, err := u.client.GetUserByEmail(email)
	if err != nil {
		// Casdoor reports missing users as errors on some versions; treat a
		// nil user either way as absent
		if casdoorUser == nil && strings.Contains(err.Error(), "doesn't exist") {
			return false, nil
		}
		return false, fmt.Errorf("failed to check user existence: %w", err)
	}

	return casdoorUser != nil, nil
}

func (u *UserCasdoor) HasRole(ctx context.Context, id string, role models.UserRole) (bool, error) {
	user, err := u.GetByID(ctx, id)
	if err != nil {
		return false, err
	}

	return user.Role == role, nil
}
