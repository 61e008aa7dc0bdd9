package service

import (
	"tutorcal/cmd/internal/domain/entity"
	"tutorcal/cmd/internal/utils"
	"tutorcal/cmd/internal/utils/apierror"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/gommon/log"
	"golang.org/x/crypto/bcrypt"
)

type UserRepository interface {
	FindByID(id uint) (*entity.User, error)
	FindByUsername(username string) (*entity.User, error)
	ExistsByUsername(username string) (bool, error)
	ExistsByEmail(email string) (bool, error)
	FindInstructors() ([]*entity.User, error)
	Save(user *entity.User) error
}

// CascadeRepository removes an instructor together with every dependent
// appointment and the resulting student notifications in one transaction.
type CascadeRepository interface {
	DeleteInstructorCascade(instructor *entity.User, message string) (int, error)
}

type RegisterRequest struct {
	Username  string `json:"username" form:"username" validate:"required,min=2,max=80"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=8,max=64"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=80"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=80"`
}

type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type InstructorResponse struct {
	ID        uint   `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

const msgInstructorDeleted = "Konto instruktora zostało usunięte, a wszystkie jego terminy zostały usunięte."

type DefaultUserService struct {
	UserRepo    UserRepository
	CascadeRepo CascadeRepository
	Validate    *validator.Validate
}

func NewUserService(userRepo UserRepository, cascadeRepo CascadeRepository, validate *validator.Validate) *DefaultUserService {
	return &DefaultUserService{UserRepo: userRepo, CascadeRepo: cascadeRepo, Validate: validate}
}

// Register creates a student account. Instructors are only ever created by
// an admin through CreateInstructor.
func (u *DefaultUserService) Register(req *RegisterRequest) apierror.ErrorResponse {
	return u.createUser(req, false)
}

// CreateInstructor is the admin path for provisioning instructor accounts.
func (u *DefaultUserService) CreateInstructor(req *RegisterRequest) apierror.ErrorResponse {
	return u.createUser(req, true)
}

func (u *DefaultUserService) createUser(req *RegisterRequest, instructor bool) apierror.ErrorResponse {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return apierror.FromValidationError(err)
	}

	taken, err := u.UserRepo.ExistsByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to check username %s: %v", req.Username, err)
		return apierror.InternalServerError
	}
	if taken {
		return apierror.UsernameTakenError
	}

	taken, err = u.UserRepo.ExistsByEmail(req.Email)
	if err != nil {
		log.Errorf("failed to check email %s: %v", req.Email, err)
		return apierror.InternalServerError
	}
	if taken {
		return apierror.EmailTakenError
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		log.Errorf("failed to hash password for %s: %v", req.Username, err)
		return apierror.InternalServerError
	}

	user := &entity.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		IsInstructor: instructor,
	}

	if err := u.UserRepo.Save(user); err != nil {
		log.Errorf("failed to create user %s: %v", req.Username, err)
		return apierror.InternalServerError
	}
	return nil
}

// Login verifies credentials against the local directory. Soft-deleted
// accounts are invisible here, so they fail the same way as unknown users.
func (u *DefaultUserService) Login(req *LoginRequest) (*entity.User, apierror.ErrorResponse) {
	utils.Sanitize(req)
	if err := u.Validate.Struct(req); err != nil {
		return nil, apierror.InvalidCredentialsError
	}

	user, err := u.UserRepo.FindByUsername(req.Username)
	if err != nil {
		log.Errorf("failed to fetch user %s: %v", req.Username, err)
		return nil, apierror.InternalServerError
	}
	if user == nil {
		return nil, apierror.InvalidCredentialsError
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		return nil, apierror.InvalidCredentialsError
	}
	return user, nil
}

// DeleteInstructor soft-deletes the account, removes every slot it owns and
// notifies each affected student. Returns how many students were notified.
func (u *DefaultUserService) DeleteInstructor(id uint) (int, apierror.ErrorResponse) {
	instructor, err := u.UserRepo.FindByID(id)
	if err != nil {
		log.Errorf("failed to fetch instructor %d: %v", id, err)
		return 0, apierror.InternalServerError
	}
	if instructor == nil || !instructor.IsInstructor || instructor.Deleted {
		return 0, apierror.NotFoundError
	}

	notified, err := u.CascadeRepo.DeleteInstructorCascade(instructor, msgInstructorDeleted)
	if err != nil {
		log.Errorf("failed to delete instructor %d: %v", id, err)
		return 0, apierror.InternalServerError
	}
	return notified, nil
}

func (u *DefaultUserService) GetInstructors() ([]*InstructorResponse, apierror.ErrorResponse) {
	instructors, err := u.UserRepo.FindInstructors()
	if err != nil {
		log.Errorf("failed to fetch instructors: %v", err)
		return nil, apierror.InternalServerError
	}

	resp := make([]*InstructorResponse, len(instructors))
	for i, user := range instructors {
		resp[i] = &InstructorResponse{ID: user.ID, FirstName: user.FirstName, LastName: user.LastName}
	}
	return resp, nil
}
