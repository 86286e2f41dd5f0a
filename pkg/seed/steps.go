package seed

import (
	"context"
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"time"

	"bilingual-lms/pkg/commerce"
	"bilingual-lms/pkg/models"
	"bilingual-lms/pkg/store"
)

func (r *Runner) seedSettings(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Settings {
		out, err := r.settings.Ensure(ctx, &models.SystemSetting{
			Key:         row.Key,
			Value:       row.Value,
			ValueAr:     row.ValueAr,
			ValueEn:     row.ValueEn,
			Description: row.Description,
		})
		if err != nil {
			return fmt.Errorf("setting %q: %w", row.Key, err)
		}
		r.record(c, "setting", row.Key, out)
	}
	return nil
}

func (r *Runner) seedUsers(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Users {
		password := row.Password
		if password == "" {
			password = r.deps.Password
		}
		hash, err := r.deps.Hasher.Hash(password)
		if err != nil {
			return fmt.Errorf("user %q: %w", row.Email, err)
		}
		u := &models.User{
			NameAr:       row.NameAr,
			NameEn:       row.NameEn,
			Email:        strings.ToLower(row.Email),
			Phone:        row.Phone,
			PasswordHash: hash,
			Role:         row.Role,
			Status:       row.Status,
			Department:   row.Department,
			Gender:       row.Gender,
		}
		out, err := store.UpsertByKey(ctx, r.deps.DB, u, "Email")
		if err != nil {
			return fmt.Errorf("user %q: %w", row.Email, err)
		}
		r.refs.users[u.Email] = u
		r.record(c, "user", u.Email, out)
	}
	return nil
}

func (r *Runner) seedCategories(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Categories {
		cat := &models.Category{
			NameAr:        row.NameAr,
			NameEn:        row.NameEn,
			DescriptionAr: row.DescriptionAr,
			DescriptionEn: row.DescriptionEn,
		}
		out, err := store.UpsertByKey(ctx, r.deps.DB, cat, "NameEn")
		if err != nil {
			return fmt.Errorf("category %q: %w", row.NameEn, err)
		}
		r.refs.categories[cat.NameEn] = cat.ID
		r.record(c, "category", cat.NameEn, out)
	}
	return nil
}

func (r *Runner) seedCourses(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Courses {
		teacher, err := r.refs.user(ctx, strings.ToLower(row.Teacher))
		if err != nil {
			return err
		}
		category, err := r.refs.category(ctx, row.Category)
		if err != nil {
			return err
		}
		course := &models.Course{
			TitleAr:       row.TitleAr,
			TitleEn:       row.TitleEn,
			Slug:          row.Key(),
			DescriptionAr: row.DescriptionAr,
			DescriptionEn: row.DescriptionEn,
			TeacherID:     teacher.ID,
			CategoryID:    category,
			Price:         row.Price,
			Discount:      row.Discount,
			Level:         row.Level,
			Status:        row.Status,
			Thumbnail:     row.Thumbnail,
		}
		out, err := r.courses.Create(ctx, course)
		if err != nil {
			return fmt.Errorf("course %q: %w", row.Key(), err)
		}
		r.refs.courses[course.Slug] = course
		r.record(c, "course", course.Slug, out)
	}
	return nil
}

func (r *Runner) seedChapters(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Courses {
		course, err := r.refs.course(ctx, row.Key())
		if err != nil {
			return err
		}
		for _, chRow := range row.Chapters {
			ch := &models.Chapter{CourseID: course.ID, Order: chRow.Order, TitleAr: chRow.TitleAr, TitleEn: chRow.TitleEn}
			out, err := r.courses.AddChapter(ctx, ch)
			if err != nil {
				return fmt.Errorf("chapter %d of %q: %w", chRow.Order, course.Slug, err)
			}
			r.refs.chapters[chapterKey{course.ID, ch.Order}] = ch.ID
			r.record(c, "chapter", fmt.Sprintf("%s#%d", course.Slug, ch.Order), out)
		}
	}
	return nil
}

func (r *Runner) seedContents(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Courses {
		course, err := r.refs.course(ctx, row.Key())
		if err != nil {
			return err
		}
		for _, cr := range row.Contents {
			content := &models.CourseContent{
				CourseID:      course.ID,
				Type:          cr.Type,
				TitleAr:       cr.TitleAr,
				TitleEn:       cr.TitleEn,
				DescriptionAr: cr.DescriptionAr,
				DescriptionEn: cr.DescriptionEn,
				Order:         cr.Order,
				Duration:      cr.Duration,
				FileURL:       cr.FileURL,
				VideoURL:      cr.VideoURL,
				IsIntroVideo:  cr.Intro,
			}
			if cr.Chapter != nil {
				id, err := r.refs.chapter(ctx, course.ID, *cr.Chapter)
				if err != nil {
					return err
				}
				content.ChapterID = &id
			}
			out, err := r.courses.AddContent(ctx, content)
			if err != nil {
				return fmt.Errorf("content %q of %q: %w", cr.TitleEn, course.Slug, err)
			}
			r.refs.contents[contentKey{course.ID, content.TitleEn}] = content.ID
			r.record(c, "content", course.Slug+"/"+content.TitleEn, out)
		}
	}
	return nil
}

func (r *Runner) seedExams(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Courses {
		if len(row.Exams) == 0 {
			continue
		}
		course, err := r.refs.course(ctx, row.Key())
		if err != nil {
			return err
		}
		for _, er := range row.Exams {
			exam := &models.Exam{
				CourseID:      course.ID,
				TitleAr:       er.TitleAr,
				TitleEn:       er.TitleEn,
				DescriptionAr: er.DescriptionAr,
				DescriptionEn: er.DescriptionEn,
				Duration:      er.Duration,
				PassingScore:  er.PassingScore,
				StartDate:     er.StartDate,
				EndDate:       er.EndDate,
			}
			questions := make([]models.ExamQuestion, len(er.Questions))
			for i, q := range er.Questions {
				questions[i] = models.ExamQuestion{Order: q.Order, QuestionBody: q.body()}
			}
			out, err := r.exams.CreateExam(ctx, exam, questions)
			if err != nil {
				return err
			}
			r.record(c, "exam", course.Slug+"/"+exam.TitleEn, out)
		}
	}
	return nil
}

func (r *Runner) seedQuizzes(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Courses {
		for _, cr := range row.Contents {
			if cr.Quiz == nil {
				continue
			}
			course, err := r.refs.course(ctx, row.Key())
			if err != nil {
				return err
			}
			contentID, err := r.refs.content(ctx, course.ID, cr.TitleEn)
			if err != nil {
				return err
			}
			quiz := &models.Quiz{
				ContentID:    contentID,
				TitleAr:      cr.Quiz.TitleAr,
				TitleEn:      cr.Quiz.TitleEn,
				PassingScore: cr.Quiz.PassingScore,
				TimeLimit:    cr.Quiz.TimeLimit,
			}
			questions := make([]models.QuizQuestion, len(cr.Quiz.Questions))
			for i, q := range cr.Quiz.Questions {
				questions[i] = models.QuizQuestion{Order: q.Order, QuestionBody: q.body()}
			}
			out, err := r.exams.CreateQuiz(ctx, quiz, questions)
			if err != nil {
				return err
			}
			r.record(c, "quiz", course.Slug+"/"+cr.TitleEn, out)
		}
	}
	return nil
}

func (r *Runner) seedPurchases(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Purchases {
		student, course, err := r.studentCourse(ctx, row.Student, row.Course)
		if err != nil {
			return err
		}
		_, out, err := r.commerce.RecordPurchase(ctx, commerce.PurchaseRequest{
			StudentID:     student.ID,
			CourseID:      course.ID,
			Method:        row.Method,
			Status:        row.Status,
			TransactionID: commerce.TransactionID("purchase", student.Email, course.Slug),
		})
		if err != nil {
			return fmt.Errorf("purchase %s/%s: %w", student.Email, course.Slug, err)
		}
		r.record(c, "purchase", student.Email+"/"+course.Slug, out)
	}
	return nil
}

func (r *Runner) seedProgress(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Progress {
		student, course, err := r.studentCourse(ctx, row.Student, row.Course)
		if err != nil {
			return err
		}
		contentID, err := r.refs.content(ctx, course.ID, row.Content)
		if err != nil {
			return err
		}
		var existing int64
		if err := r.deps.DB.WithContext(ctx).Model(&models.Progress{}).
			Where("student_id = ? AND content_id = ?", student.ID, contentID).
			Count(&existing).Error; err != nil {
			return err
		}
		if _, err := r.progress.Record(ctx, student.ID, contentID, row.Percent); err != nil {
			return fmt.Errorf("progress %s/%s: %w", student.Email, row.Content, err)
		}
		out := store.Created
		if existing > 0 {
			out = store.AlreadyExists
		}
		r.record(c, "progress", student.Email+"/"+course.Slug+"/"+row.Content, out)
	}
	return nil
}

func (r *Runner) seedRatings(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Ratings {
		student, course, err := r.studentCourse(ctx, row.Student, row.Course)
		if err != nil {
			return err
		}
		out, err := r.ratings.SubmitCourseRating(ctx, &models.Rating{
			StudentID: student.ID,
			CourseID:  course.ID,
			Rating:    row.Rating,
			CommentAr: row.CommentAr,
			CommentEn: row.CommentEn,
		})
		if err != nil {
			return fmt.Errorf("rating %s/%s: %w", student.Email, course.Slug, err)
		}
		r.record(c, "course rating", student.Email+"/"+course.Slug, out)
	}
	for _, row := range r.data.TeacherRatings {
		student, err := r.refs.user(ctx, strings.ToLower(row.Student))
		if err != nil {
			return err
		}
		teacher, err := r.refs.user(ctx, strings.ToLower(row.Teacher))
		if err != nil {
			return err
		}
		out, err := r.ratings.SubmitTeacherRating(ctx, &models.TeacherRating{
			StudentID: student.ID,
			TeacherID: teacher.ID,
			Rating:    row.Rating,
			CommentAr: row.CommentAr,
			CommentEn: row.CommentEn,
		})
		if err != nil {
			return fmt.Errorf("teacher rating %s/%s: %w", student.Email, teacher.Email, err)
		}
		r.record(c, "teacher rating", student.Email+"/"+teacher.Email, out)
	}
	return nil
}

func (r *Runner) seedCarts(ctx context.Context, c *Counts) error {
	return r.courseLists(ctx, c, r.data.Carts, "cart item", r.commerce.AddToCart)
}

func (r *Runner) seedWishlists(ctx context.Context, c *Counts) error {
	return r.courseLists(ctx, c, r.data.Wishlists, "wishlist item", r.commerce.AddToWishlist)
}

func (r *Runner) courseLists(ctx context.Context, c *Counts, rows []CourseListRow, entity string,
	add func(ctx context.Context, studentID, courseID uint) (store.Outcome, error)) error {
	for _, row := range rows {
		for _, slug := range row.Courses {
			student, course, err := r.studentCourse(ctx, row.Student, slug)
			if err != nil {
				return err
			}
			key := student.Email + "/" + course.Slug
			out, err := add(ctx, student.ID, course.ID)
			if errors.Is(err, commerce.ErrAlreadyPurchased) {
				// Bought since the dataset was written.
				r.log.Info(entity+" skipped, course already purchased", "key", key)
				continue
			}
			if err != nil {
				return fmt.Errorf("%s %s: %w", entity, key, err)
			}
			r.record(c, entity, key, out)
		}
	}
	return nil
}

func (r *Runner) seedNotifications(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Notifications {
		sender, err := r.refs.user(ctx, strings.ToLower(row.Sender))
		if err != nil {
			return err
		}
		key := row.Key
		n := &models.Notification{
			SenderID:    sender.ID,
			TitleAr:     row.TitleAr,
			TitleEn:     row.TitleEn,
			MessageAr:   row.MessageAr,
			MessageEn:   row.MessageEn,
			Type:        row.Type,
			ExternalKey: &key,
		}
		if row.Course != "" {
			course, err := r.refs.course(ctx, row.Course)
			if err != nil {
				return err
			}
			n.CourseID = &course.ID
		}

		recipients, err := r.refs.usersWithRoles(ctx, row.Roles)
		if err != nil {
			return err
		}
		for _, email := range row.Recipients {
			u, err := r.refs.user(ctx, strings.ToLower(email))
			if err != nil {
				return err
			}
			recipients = append(recipients, u.ID)
		}

		out, err := r.notifications.Send(ctx, n, recipients)
		if err != nil {
			return fmt.Errorf("notification %q: %w", row.Key, err)
		}
		r.record(c, "notification", row.Key, out)
	}
	return nil
}

func (r *Runner) seedTickets(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Tickets {
		user, err := r.refs.user(ctx, strings.ToLower(row.User))
		if err != nil {
			return err
		}
		key := row.Key
		t := &models.Ticket{
			UserID:      user.ID,
			Title:       row.Title,
			Message:     row.Message,
			Status:      row.Status,
			ExternalKey: &key,
		}
		if row.AdminReply != "" {
			reply := row.AdminReply
			t.AdminReply = &reply
		}
		if t.Status == models.TicketResolved {
			now := time.Now().UTC()
			t.ResolvedAt = &now
		}
		out, err := r.support.Open(ctx, t)
		if err != nil {
			return fmt.Errorf("ticket %q: %w", row.Key, err)
		}
		r.record(c, "ticket", row.Key, out)
	}
	return nil
}

func (r *Runner) seedBanners(ctx context.Context, c *Counts) error {
	for _, row := range r.data.Banners {
		image, err := r.bannerImage(ctx, row.Image)
		if err != nil {
			return fmt.Errorf("banner %q: %w", row.Key, err)
		}
		key := row.Key
		b := &models.Banner{
			Image:       image,
			TitleAr:     row.TitleAr,
			TitleEn:     row.TitleEn,
			Link:        row.Link,
			Order:       row.Order,
			Active:      row.Active,
			ExternalKey: &key,
		}
		out, err := store.UpsertByKey(ctx, r.deps.DB, b, "ExternalKey")
		if err != nil {
			return fmt.Errorf("banner %q: %w", row.Key, err)
		}
		r.record(c, "banner", row.Key, out)
	}
	return nil
}

// bannerImage uploads a local asset when uploads are configured and the image
// is not already a URL.
func (r *Runner) bannerImage(ctx context.Context, image string) (string, error) {
	if r.deps.Media == nil || r.deps.AssetsDir == "" || isURL(image) {
		return image, nil
	}
	object := path.Join("banners", filepath.Base(image))
	u, out, err := r.deps.Media.UploadFile(ctx, object, filepath.Join(r.deps.AssetsDir, image))
	if err != nil {
		return "", err
	}
	r.log.Info("banner asset "+out.String(), "object", object)
	return u, nil
}

func (r *Runner) seedSearch(ctx context.Context, c *Counts) error {
	if r.deps.Index == nil {
		r.log.Info("search index not configured, skipping")
		return nil
	}
	n, err := r.deps.Index.Reindex(ctx, r.deps.DB)
	if err != nil {
		return err
	}
	c.Created = n
	return nil
}

func (r *Runner) studentCourse(ctx context.Context, email, slug string) (*models.User, *models.Course, error) {
	student, err := r.refs.user(ctx, strings.ToLower(email))
	if err != nil {
		return nil, nil, err
	}
	course, err := r.refs.course(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	return student, course, nil
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
