package i18n

// messages is the built-in vocabulary. Callers reference these keys as string
// literals, so renaming a key is a breaking change.
func messages() Namespace {
	return Namespace{
		"AUTH": Namespace{
			"LOGIN_SUCCESS":       Leaf{Ar: "تم تسجيل الدخول بنجاح", En: "Login successful"},
			"LOGOUT_SUCCESS":      Leaf{Ar: "تم تسجيل الخروج بنجاح", En: "Logout successful"},
			"REGISTER_SUCCESS":    Leaf{Ar: "تم إنشاء الحساب بنجاح", En: "Account created successfully"},
			"INVALID_CREDENTIALS": Leaf{Ar: "البريد الإلكتروني أو كلمة المرور غير صحيحة", En: "Invalid email or password"},
			"EMAIL_EXISTS":        Leaf{Ar: "البريد الإلكتروني مستخدم بالفعل", En: "Email already in use"},
			"UNAUTHORIZED":        Leaf{Ar: "غير مصرح لك بالوصول", En: "Unauthorized access"},
			"FORBIDDEN":           Leaf{Ar: "ليس لديك صلاحية لتنفيذ هذا الإجراء", En: "You do not have permission to perform this action"},
			"ACCOUNT_SUSPENDED":   Leaf{Ar: "تم إيقاف الحساب", En: "Account suspended"},
			"PASSWORD_CHANGED":    Leaf{Ar: "تم تغيير كلمة المرور بنجاح", En: "Password changed successfully"},
			"TOKEN_EXPIRED":       Leaf{Ar: "انتهت صلاحية الجلسة", En: "Session expired"},
		},
		"COURSE": Namespace{
			"CREATED":          Leaf{Ar: "تم إنشاء الدورة بنجاح", En: "Course created successfully"},
			"UPDATED":          Leaf{Ar: "تم تحديث الدورة بنجاح", En: "Course updated successfully"},
			"DELETED":          Leaf{Ar: "تم حذف الدورة بنجاح", En: "Course deleted successfully"},
			"PUBLISHED":        Leaf{Ar: "تم نشر الدورة", En: "Course published"},
			"NOT_FOUND":        Leaf{Ar: "الدورة غير موجودة", En: "Course not found"},
			"NOT_PUBLISHED":    Leaf{Ar: "الدورة غير منشورة", En: "Course is not published"},
			"ACCESS_DENIED":    Leaf{Ar: "يجب شراء الدورة للوصول إلى المحتوى", En: "Purchase the course to access its content"},
			"CHAPTER_ADDED":    Leaf{Ar: "تمت إضافة الفصل بنجاح", En: "Chapter added successfully"},
			"CONTENT_ADDED":    Leaf{Ar: "تمت إضافة المحتوى بنجاح", En: "Content added successfully"},
			"NEW_CONTENT":      Leaf{Ar: "تمت إضافة محتوى جديد إلى الدورة", En: "New content was added to the course"},
			"INVALID_DISCOUNT": Leaf{Ar: "يجب أن تكون نسبة الخصم بين 0 و 100", En: "Discount must be between 0 and 100"},
		},
		"PAYMENT": Namespace{
			"SUCCESS":           Leaf{Ar: "تمت عملية الدفع بنجاح", En: "Payment completed successfully"},
			"FAILED":            Leaf{Ar: "فشلت عملية الدفع", En: "Payment failed"},
			"PENDING":           Leaf{Ar: "عملية الدفع قيد المعالجة", En: "Payment is being processed"},
			"ALREADY_PURCHASED": Leaf{Ar: "لقد قمت بشراء هذه الدورة بالفعل", En: "You have already purchased this course"},
			"INVALID_METHOD":    Leaf{Ar: "طريقة الدفع غير مدعومة", En: "Unsupported payment method"},
			"RECEIPT":           Leaf{Ar: "إيصال الدفع", En: "Payment receipt"},
		},
		"PROGRESS": Namespace{
			"UPDATED":          Leaf{Ar: "تم تحديث التقدم", En: "Progress updated"},
			"COMPLETED":        Leaf{Ar: "أحسنت! لقد أكملت هذا الدرس", En: "Well done! You completed this lesson"},
			"COURSE_COMPLETED": Leaf{Ar: "تهانينا! لقد أكملت الدورة", En: "Congratulations! You completed the course"},
			"QUIZ_REQUIRED":    Leaf{Ar: "يجب اجتياز الاختبار القصير قبل المتابعة", En: "Pass the quiz before continuing"},
		},
		"EXAM": Namespace{
			"SUBMITTED":     Leaf{Ar: "تم تسليم الامتحان", En: "Exam submitted"},
			"PASSED":        Leaf{Ar: "لقد نجحت في الامتحان", En: "You passed the exam"},
			"FAILED":        Leaf{Ar: "لم تجتز الامتحان", En: "You did not pass the exam"},
			"NOT_STARTED":   Leaf{Ar: "لم يبدأ الامتحان بعد", En: "The exam has not started yet"},
			"ENDED":         Leaf{Ar: "انتهى وقت الامتحان", En: "The exam has ended"},
			"NOT_FOUND":     Leaf{Ar: "الامتحان غير موجود", En: "Exam not found"},
			"REVIEW_NEEDED": Leaf{Ar: "بعض الإجابات بانتظار التصحيح", En: "Some answers are awaiting review"},
		},
		"QUIZ": Namespace{
			"SUBMITTED":     Leaf{Ar: "تم تسليم الاختبار القصير", En: "Quiz submitted"},
			"PASSED":        Leaf{Ar: "لقد اجتزت الاختبار القصير", En: "You passed the quiz"},
			"FAILED":        Leaf{Ar: "لم تجتز الاختبار القصير", En: "You did not pass the quiz"},
			"TIME_EXCEEDED": Leaf{Ar: "تم تجاوز الوقت المحدد للاختبار", En: "Quiz time limit exceeded"},
			"NOT_FOUND":     Leaf{Ar: "الاختبار القصير غير موجود", En: "Quiz not found"},
			"NEW_AVAILABLE": Leaf{Ar: "يتوفر اختبار قصير جديد", En: "A new quiz is available"},
		},
		"CART": Namespace{
			"ADDED":         Leaf{Ar: "تمت إضافة الدورة إلى السلة", En: "Course added to cart"},
			"REMOVED":       Leaf{Ar: "تمت إزالة الدورة من السلة", En: "Course removed from cart"},
			"ALREADY_ADDED": Leaf{Ar: "الدورة موجودة بالفعل في السلة", En: "Course is already in the cart"},
			"EMPTY":         Leaf{Ar: "السلة فارغة", En: "Your cart is empty"},
			"CHECKED_OUT":   Leaf{Ar: "تمت عملية الشراء بنجاح", En: "Checkout completed"},
		},
		"WISHLIST": Namespace{
			"ADDED":         Leaf{Ar: "تمت إضافة الدورة إلى المفضلة", En: "Course added to wishlist"},
			"REMOVED":       Leaf{Ar: "تمت إزالة الدورة من المفضلة", En: "Course removed from wishlist"},
			"ALREADY_ADDED": Leaf{Ar: "الدورة موجودة بالفعل في المفضلة", En: "Course is already in the wishlist"},
		},
		"PROFILE": Namespace{
			"UPDATED":       Leaf{Ar: "تم تحديث الملف الشخصي", En: "Profile updated"},
			"NOT_FOUND":     Leaf{Ar: "المستخدم غير موجود", En: "User not found"},
			"RATED":         Leaf{Ar: "شكراً لتقييمك", En: "Thank you for your rating"},
			"ALREADY_RATED": Leaf{Ar: "لقد قمت بالتقييم مسبقاً", En: "You have already submitted a rating"},
		},
		"SUPPORT": Namespace{
			"TICKET_CREATED":   Leaf{Ar: "تم إنشاء تذكرة الدعم", En: "Support ticket created"},
			"TICKET_UPDATED":   Leaf{Ar: "تم تحديث تذكرة الدعم", En: "Support ticket updated"},
			"TICKET_RESOLVED":  Leaf{Ar: "تم حل تذكرة الدعم", En: "Support ticket resolved"},
			"TICKET_NOT_FOUND": Leaf{Ar: "التذكرة غير موجودة", En: "Ticket not found"},
			"INVALID_STATUS":   Leaf{Ar: "لا يمكن تغيير حالة التذكرة", En: "Ticket status cannot be changed"},
		},
		"GENERAL": Namespace{
			"SUCCESS":          Leaf{Ar: "تمت العملية بنجاح", En: "Operation successful"},
			"SERVER_ERROR":     Leaf{Ar: "حدث خطأ في الخادم", En: "Internal server error"},
			"NOT_FOUND":        Leaf{Ar: "العنصر غير موجود", En: "Resource not found"},
			"VALIDATION_ERROR": Leaf{Ar: "البيانات المدخلة غير صالحة", En: "Invalid input"},
			"ALREADY_EXISTS":   Leaf{Ar: "العنصر موجود بالفعل", En: "Resource already exists"},
			"NEW_NOTIFICATION": Leaf{Ar: "لديك إشعار جديد", En: "You have a new notification"},
		},
	}
}
